// seed escribe los archivos JSON de demo (db, regiones, versiones,
// usuarios) en el directorio de datos. No pisa archivos existentes
// salvo con -force.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
	"github.com/dropDatabas3/clusterdesk/internal/util/atomicwrite"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "data", "directorio destino")
	force := flag.Bool("force", false, "sobreescribir archivos existentes")
	flag.Parse()

	if v := os.Getenv("DATA_DIR"); v != "" && *dir == "data" {
		*dir = v
	}

	now := time.Now().UTC()

	db := domain.Database{
		Projects: []domain.Project{
			{ID: "proj-web", Name: "Web Platform", Description: "Customer-facing web services"},
			{ID: "proj-data", Name: "Data Platform", Description: "Batch and streaming pipelines"},
			{ID: "proj-ml", Name: "ML Experiments", Description: "Model training sandboxes"},
		},
		Clusters: []domain.Cluster{
			{
				ID:        "cluster-seed-web-1",
				ProjectID: "proj-web",
				Name:      "web-prod",
				Region:    "us-east-1",
				Version:   "1.28.0",
				NodeCount: 5,
				Status:    domain.StatusRunning,
				Labels:    map[string]string{"env": "prod", "team": "web"},
				CreatedAt: now.Add(-48 * time.Hour),
				UpdatedAt: now.Add(-2 * time.Hour),
			},
			{
				ID:        "cluster-seed-data-1",
				ProjectID: "proj-data",
				Name:      "etl-staging",
				Region:    "eu-west-1",
				Version:   "1.27.5",
				NodeCount: 3,
				Status:    domain.StatusRunning,
				Labels:    map[string]string{"env": "staging"},
				CreatedAt: now.Add(-24 * time.Hour),
				UpdatedAt: now.Add(-24 * time.Hour),
			},
		},
	}

	regions := []domain.Region{
		{ID: "reg-1", Name: "US East (N. Virginia)", Code: "us-east-1"},
		{ID: "reg-2", Name: "US West (Oregon)", Code: "us-west-2"},
		{ID: "reg-3", Name: "EU (Ireland)", Code: "eu-west-1"},
		{ID: "reg-4", Name: "Asia Pacific (Tokyo)", Code: "ap-northeast-1"},
	}

	versions := []domain.Version{
		{Version: "1.28.0", IsDefault: true, SupportStatus: "supported"},
		{Version: "1.27.5", IsDefault: false, SupportStatus: "supported"},
		{Version: "1.26.9", IsDefault: false, SupportStatus: "deprecated"},
	}

	users := struct {
		Users []domain.User `json:"users"`
	}{
		Users: []domain.User{
			{Email: "admin@example.com", Password: "admin123", Role: "admin", Name: "Admin User"},
			{Email: "dev@example.com", Password: "dev123", Role: "developer", Name: "Dev User"},
		},
	}

	files := []struct {
		name string
		v    any
	}{
		{"db.json", db},
		{"regions.json", regions},
		{"versions.json", versions},
		{"users.json", users},
	}

	for _, f := range files {
		path := filepath.Join(*dir, f.name)
		if !*force {
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("skip %s (exists, use -force)\n", path)
				continue
			}
		}
		b, err := json.MarshalIndent(f.v, "", "  ")
		if err != nil {
			log.Fatalf("marshal %s: %v", f.name, err)
		}
		b = append(b, '\n')
		if err := atomicwrite.AtomicWriteFile(path, b, 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		fmt.Printf("wrote %s\n", path)
	}
}
