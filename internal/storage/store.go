package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	StepsTaken int                `json:"steps_taken"`
	Contacts   int                `json:"contacts"`
	Bodies     []string           `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
	// Config is the scene file that produced the run, so it can be rerun.
	Config string `json:"config"`
}

func bodyNames(cfg *config.Config) []string {
	names := make([]string, len(cfg.Bodies))
	for i, b := range cfg.Bodies {
		names[i] = b.Name
	}
	return names
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Scene, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	scene, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      cfg.Scene,
		Timestamp:  now,
		Dt:         cfg.Dt,
		Steps:      cfg.Steps,
		StepsTaken: result.StepsTaken,
		Contacts:   result.Contacts,
		Bodies:     bodyNames(cfg),
		Metrics:    finite(result.Metrics),
		Config:     string(scene),
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), meta.Bodies, result); err != nil {
		return "", err
	}
	return runID, nil
}

// finite drops values JSON cannot carry, such as a min height that was
// never sampled.
func finite(metrics map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var columns = [sim.StateWidth]string{"x", "y", "angle", "vx", "vy", "w"}

func writeStates(path string, bodies []string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(result.States) > 0 {
		header := []string{"time"}
		for i := 0; i < len(result.States[0])/sim.StateWidth; i++ {
			name := fmt.Sprintf("body%d", i)
			if i < len(bodies) {
				name = bodies[i]
			}
			for _, c := range columns {
				header = append(header, name+"."+c)
			}
		}
		if err := w.Write(header); err != nil {
			return err
		}

		for i := range result.States {
			row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
			for _, val := range result.States[i] {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int { return a.Timestamp.Compare(b.Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadConfig decodes the scene config stored with a run.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	return config.Parse([]byte(meta.Config))
}

// LoadResult rebuilds a result from a stored run. Contacts and metrics come
// from the metadata; states are read back at CSV precision.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &sim.Result{
		States:     make([]sim.State, len(states)),
		Times:      times,
		Metrics:    meta.Metrics,
		StepsTaken: meta.StepsTaken,
		Contacts:   meta.Contacts,
	}
	for i, st := range states {
		result.States[i] = st
	}
	return meta, result, nil
}

func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return states, times, nil
}
