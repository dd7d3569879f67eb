// Package validation contiene las reglas de campos para clusters.
// Es una lista plana de reglas independientes; el resultado es un array
// ordenado de {field, message} que la capa HTTP devuelve como 400.
package validation

import (
	"math"
	"strings"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
)

// FieldError es un error de validación atribuible a un campo.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Predicates son los predicados de pertenencia que las reglas necesitan
// del store. Se acepta la interfaz para poder testear con un fake.
type Predicates interface {
	NameExists(projectID, name, excludeID string) bool
	IsValidRegion(code string) bool
	IsValidVersion(version string) bool
}

// ClusterValidator valida patches de creación y actualización.
type ClusterValidator struct {
	preds Predicates
}

func NewClusterValidator(preds Predicates) *ClusterValidator {
	return &ClusterValidator{preds: preds}
}

// Validate aplica todas las reglas y devuelve los errores encontrados,
// en orden fijo (name, region, version, nodeCount, status, labels).
//
// En isUpdate los campos ausentes no se validan (update parcial); en
// create todos son requeridos. excludeID excluye al propio cluster del
// chequeo de unicidad para que un rename no-op pase.
//
// El rechazo es atómico: si cualquier regla falla el patch entero se
// descarta, nunca se aplica un patch parcialmente válido.
func (v *ClusterValidator) Validate(patch domain.ClusterPatch, projectID string, isUpdate bool, excludeID string) []FieldError {
	var errs []FieldError

	// Name
	switch {
	case !isUpdate && (patch.Name == nil || strings.TrimSpace(*patch.Name) == ""):
		errs = append(errs, FieldError{Field: "name", Message: "Cluster name is required"})
	case isUpdate && patch.Name != nil && strings.TrimSpace(*patch.Name) == "":
		errs = append(errs, FieldError{Field: "name", Message: "Cluster name is required"})
	case patch.Name != nil && strings.TrimSpace(*patch.Name) != "":
		if v.preds.NameExists(projectID, *patch.Name, excludeID) {
			errs = append(errs, FieldError{Field: "name", Message: "Cluster name already exists in this project"})
		}
	}

	// Region
	if !isUpdate && (patch.Region == nil || strings.TrimSpace(*patch.Region) == "") {
		errs = append(errs, FieldError{Field: "region", Message: "Region is required"})
	} else if patch.Region != nil && !v.preds.IsValidRegion(*patch.Region) {
		errs = append(errs, FieldError{Field: "region", Message: "Invalid region"})
	}

	// Version
	if !isUpdate && (patch.Version == nil || strings.TrimSpace(*patch.Version) == "") {
		errs = append(errs, FieldError{Field: "version", Message: "Version is required"})
	} else if patch.Version != nil && !v.preds.IsValidVersion(*patch.Version) {
		errs = append(errs, FieldError{Field: "version", Message: "Invalid version"})
	}

	// Node count
	if !isUpdate && patch.NodeCount == nil {
		errs = append(errs, FieldError{Field: "nodeCount", Message: "Node count is required"})
	} else if patch.NodeCount != nil {
		n := *patch.NodeCount
		if n != math.Trunc(n) {
			errs = append(errs, FieldError{Field: "nodeCount", Message: "Node count must be an integer"})
		} else if n < 1 || n > 100 {
			errs = append(errs, FieldError{Field: "nodeCount", Message: "Node count must be between 1 and 100"})
		}
	}

	// Status: enum cerrado; la API sólo lo acepta en updates.
	if patch.Status != nil && !patch.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: "Invalid status"})
	}

	// Labels: keys no vacías
	for k := range patch.Labels {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, FieldError{Field: "labels", Message: "Label keys must not be empty"})
			break
		}
	}

	return errs
}
