package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/sim"
)

type ExportData struct {
	Scene    string             `json:"scene"`
	Dt       float64            `json:"dt"`
	Steps    int                `json:"steps"`
	Bodies   []string           `json:"bodies"`
	Columns  []string           `json:"columns"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Contacts int                `json:"contacts"`
	Metrics  map[string]float64 `json:"metrics"`
}

func newExportData(cfg *config.Config, result *sim.Result) ExportData {
	data := ExportData{
		Scene:    cfg.Scene,
		Dt:       cfg.Dt,
		Steps:    result.StepsTaken,
		Bodies:   bodyNames(cfg),
		Columns:  columns[:],
		Times:    result.Times,
		States:   make([][]float64, len(result.States)),
		Contacts: result.Contacts,
		Metrics:  finite(result.Metrics),
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

func ExportJSON(path string, cfg *config.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSONWriter(file, cfg, result)
}

func ExportJSONWriter(w io.Writer, cfg *config.Config, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(cfg, result))
}
