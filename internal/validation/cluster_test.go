package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
)

type fakePreds struct {
	taken    map[string]string // name -> owning cluster id
	regions  []string
	versions []string
}

func (f *fakePreds) NameExists(projectID, name, excludeID string) bool {
	owner, ok := f.taken[name]
	return ok && owner != excludeID
}

func (f *fakePreds) IsValidRegion(code string) bool {
	for _, r := range f.regions {
		if r == code {
			return true
		}
	}
	return false
}

func (f *fakePreds) IsValidVersion(version string) bool {
	for _, v := range f.versions {
		if v == version {
			return true
		}
	}
	return false
}

func newPreds() *fakePreds {
	return &fakePreds{
		taken:    map[string]string{"existing": "cluster-1"},
		regions:  []string{"us-east-1", "eu-west-1"},
		versions: []string{"1.28.0"},
	}
}

func strp(s string) *string { return &s }

func numPtr(n float64) *float64 { return &n }

func validCreatePatch() domain.ClusterPatch {
	return domain.ClusterPatch{
		Name:      strp("fresh"),
		Region:    strp("us-east-1"),
		Version:   strp("1.28.0"),
		NodeCount: numPtr(3),
	}
}

func fieldMessages(errs []FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}

func TestValidate_CreateHappyPath(t *testing.T) {
	v := NewClusterValidator(newPreds())
	assert.Empty(t, v.Validate(validCreatePatch(), "proj-1", false, ""))
}

func TestValidate_CreateRequiredFields(t *testing.T) {
	v := NewClusterValidator(newPreds())

	errs := v.Validate(domain.ClusterPatch{}, "proj-1", false, "")
	msgs := fieldMessages(errs)

	assert.Equal(t, "Cluster name is required", msgs["name"])
	assert.Equal(t, "Region is required", msgs["region"])
	assert.Equal(t, "Version is required", msgs["version"])
	assert.Equal(t, "Node count is required", msgs["nodeCount"])
}

func TestValidate_WhitespaceNameIsMissing(t *testing.T) {
	v := NewClusterValidator(newPreds())

	patch := validCreatePatch()
	patch.Name = strp("   ")
	errs := v.Validate(patch, "proj-1", false, "")
	assert.Equal(t, "Cluster name is required", fieldMessages(errs)["name"])
}

func TestValidate_DuplicateName(t *testing.T) {
	v := NewClusterValidator(newPreds())

	patch := validCreatePatch()
	patch.Name = strp("existing")
	errs := v.Validate(patch, "proj-1", false, "")
	require.Len(t, errs, 1)
	assert.Equal(t, "Cluster name already exists in this project", errs[0].Message)
}

func TestValidate_RenameToOwnNamePasses(t *testing.T) {
	v := NewClusterValidator(newPreds())

	// rename no-op: el propio cluster no cuenta como duplicado
	errs := v.Validate(domain.ClusterPatch{Name: strp("existing")}, "proj-1", true, "cluster-1")
	assert.Empty(t, errs)
}

func TestValidate_InvalidRegionAndVersion(t *testing.T) {
	v := NewClusterValidator(newPreds())

	patch := validCreatePatch()
	patch.Region = strp("mars-1")
	patch.Version = strp("0.0.1")
	msgs := fieldMessages(v.Validate(patch, "proj-1", false, ""))
	assert.Equal(t, "Invalid region", msgs["region"])
	assert.Equal(t, "Invalid version", msgs["version"])
}

func TestValidate_NodeCountBounds(t *testing.T) {
	v := NewClusterValidator(newPreds())

	cases := []struct {
		name string
		n    float64
		want string
	}{
		{"zero", 0, "Node count must be between 1 and 100"},
		{"negative", -2, "Node count must be between 1 and 100"},
		{"over max", 101, "Node count must be between 1 and 100"},
		{"fractional", 2.5, "Node count must be an integer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := v.Validate(domain.ClusterPatch{NodeCount: numPtr(tc.n)}, "proj-1", true, "cluster-1")
			require.Len(t, errs, 1)
			assert.Equal(t, "nodeCount", errs[0].Field)
			assert.Equal(t, tc.want, errs[0].Message)
		})
	}

	// bordes inclusivos
	assert.Empty(t, v.Validate(domain.ClusterPatch{NodeCount: numPtr(1)}, "proj-1", true, "cluster-1"))
	assert.Empty(t, v.Validate(domain.ClusterPatch{NodeCount: numPtr(100)}, "proj-1", true, "cluster-1"))
}

func TestValidate_UpdateSkipsAbsentFields(t *testing.T) {
	v := NewClusterValidator(newPreds())

	// un patch vacío en update es válido: nada que aplicar, nada que rechazar
	assert.Empty(t, v.Validate(domain.ClusterPatch{}, "proj-1", true, "cluster-1"))
}

func TestValidate_UpdateEmptyNameRejected(t *testing.T) {
	v := NewClusterValidator(newPreds())

	errs := v.Validate(domain.ClusterPatch{Name: strp("")}, "proj-1", true, "cluster-1")
	require.Len(t, errs, 1)
	assert.Equal(t, "Cluster name is required", errs[0].Message)
}

func TestValidate_InvalidStatus(t *testing.T) {
	v := NewClusterValidator(newPreds())

	bad := domain.Status("destroyed")
	errs := v.Validate(domain.ClusterPatch{Status: &bad}, "proj-1", true, "cluster-1")
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid status", errs[0].Message)
}

func TestValidate_EmptyLabelKey(t *testing.T) {
	v := NewClusterValidator(newPreds())

	errs := v.Validate(domain.ClusterPatch{Labels: map[string]string{" ": "x"}}, "proj-1", true, "cluster-1")
	require.Len(t, errs, 1)
	assert.Equal(t, "labels", errs[0].Field)
}

func TestValidate_CollectsAllErrorsAtOnce(t *testing.T) {
	v := NewClusterValidator(newPreds())

	patch := domain.ClusterPatch{
		Name:      strp("existing"),
		Region:    strp("mars-1"),
		NodeCount: numPtr(0),
	}
	errs := v.Validate(patch, "proj-1", false, "")
	// name dup, region inválida, version faltante, nodeCount fuera de rango
	assert.Len(t, errs, 4)
}
