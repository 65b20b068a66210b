package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/KaramelBytes/wbclimate-cli/internal/utils"
	"github.com/google/uuid"
)

// Artifact kinds.
const (
	KindReport   = "report"
	KindChart    = "chart"
	KindHeatmap  = "heatmap"
	KindWorkbook = "workbook"
)

// Manifest records one analysis run and the files it produced.
type Manifest struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Metadata   string     `json:"metadata,omitempty"`
	Countries  []string   `json:"countries"`
	Indicators []string   `json:"indicators"`
	Years      []string   `json:"years"`
	Artifacts  []Artifact `json:"artifacts"`
	CreatedAt  time.Time  `json:"created_at"`

	// Not serialized: directory holding run.json
	rootDir string `json:"-"`
}

// Artifact is a file written by a run, relative to the run directory.
type Artifact struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// New constructs an in-memory manifest. Call Save() to persist.
func New(source, rootDir string) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now(),
		rootDir:   rootDir,
	}
}

// Load reads run.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, utils.ManifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the run directory.
func (m *Manifest) RootDir() string { return m.rootDir }

// Add records a written file. Absolute paths inside the run directory are
// stored relative to it; re-adding a path replaces its kind.
func (m *Manifest) Add(kind, path string) {
	if rel, err := filepath.Rel(m.rootDir, path); err == nil && filepath.IsAbs(path) == filepath.IsAbs(m.rootDir) {
		path = rel
	}
	path = filepath.ToSlash(path)
	for i := range m.Artifacts {
		if m.Artifacts[i].Path == path {
			m.Artifacts[i].Kind = kind
			return
		}
	}
	m.Artifacts = append(m.Artifacts, Artifact{Kind: kind, Path: path})
}

// Save writes run.json using atomic write. Artifacts are stored sorted by path.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("run directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	sort.Slice(m.Artifacts, func(i, j int) bool { return m.Artifacts[i].Path < m.Artifacts[j].Path })
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.rootDir, utils.ManifestFileName), data)
}

// Missing lists artifacts that no longer exist on disk.
func (m *Manifest) Missing() []Artifact {
	var out []Artifact
	for _, a := range m.Artifacts {
		if _, err := os.Stat(filepath.Join(m.rootDir, filepath.FromSlash(a.Path))); err != nil {
			out = append(out, a)
		}
	}
	return out
}
