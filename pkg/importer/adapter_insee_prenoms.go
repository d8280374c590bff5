package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/prenoms-registry/pkg/source"
)

func init() {
	Register(&inseePrenomsAdapter{})
}

// inseePrenomsAdapter imports the INSEE national first-name file. The CSV is
// already in the national layout, so it is kept verbatim.
type inseePrenomsAdapter struct{}

func (a *inseePrenomsAdapter) ID() string          { return "insee-prenoms-fr" }
func (a *inseePrenomsAdapter) DatasetID() string   { return "prenoms-fr" }
func (a *inseePrenomsAdapter) Description() string { return "INSEE prenoms (fichier national par annee et sexe)" }
func (a *inseePrenomsAdapter) DefaultURL() string {
	return "https://www.insee.fr/fr/statistiques/fichier/2540004/nat2021_csv.zip"
}
func (a *inseePrenomsAdapter) License() string { return "Licence Ouverte 2.0" }

func (a *inseePrenomsAdapter) Import(ctx context.Context, sourceURL, outputDir string) error {
	dlDir := filepath.Join(outputDir, "_download")
	if err := ensureDir(dlDir); err != nil {
		return err
	}
	defer os.RemoveAll(dlDir)

	zipPath := filepath.Join(dlDir, "prenoms.zip")
	fmt.Printf("  telechargement %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, zipPath); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	files, err := unzipFile(zipPath, dlDir)
	if err != nil {
		return fmt.Errorf("unzip: %w", err)
	}
	csvPath := firstWithSuffix(files, ".csv")
	if csvPath == "" {
		return fmt.Errorf("no CSV found in ZIP")
	}

	dir := filepath.Join(outputDir, a.DatasetID())
	if err := ensureDir(dir); err != nil {
		return err
	}
	if err := copyFile(csvPath, filepath.Join(dir, "data.csv")); err != nil {
		return err
	}

	return finishDataset(dir, &source.Manifest{
		ID:           a.DatasetID(),
		Version:      time.Now().Format("2006-01"),
		Jurisdiction: "fr",
		Source:       "INSEE fichier des prenoms",
		SourceURL:    sourceURL,
		License:      a.License(),
		DataFile:     "data.csv",
		Format:       source.NationalFormat(),
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
