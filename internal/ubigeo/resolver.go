// Package ubigeo resolves Peruvian geographic codes (departamento, provincia,
// distrito) to display names. Dictionaries are loaded once at startup and are
// read-only afterwards; the resolver is injected wherever names are cached so
// tests can substitute a fake.
package ubigeo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one row of a dictionary file.
type Entry struct {
	ID   string `json:"id_ubigeo"`
	Name string `json:"nombre_ubigeo"`
	Code string `json:"codigo_ubigeo"`
}

// Resolver maps hierarchical codes to dictionary entries. Province and
// district codes are fixed-width (4 and 6 digits); only their trailing two
// digits are matched, scoped under the parent entry's internal id.
type Resolver interface {
	Department(code string) (Entry, bool)
	Province(departmentID, code string) (Entry, bool)
	District(provinceID, code string) (Entry, bool)
}

// Names resolves a full code triple into cached display names. A name is
// returned only when its code resolved; a break anywhere in the chain leaves
// the remaining names nil without being an error.
func Names(r Resolver, depCode, provCode, distCode string) (depName, provName, distName *string) {
	dep, ok := r.Department(depCode)
	if !ok {
		return nil, nil, nil
	}
	depName = &dep.Name
	prov, ok := r.Province(dep.ID, provCode)
	if !ok {
		return depName, nil, nil
	}
	provName = &prov.Name
	if dist, ok := r.District(prov.ID, distCode); ok {
		distName = &dist.Name
	}
	return depName, provName, distName
}

// FileResolver serves lookups from the three JSON dictionaries shipped with
// the application (departamentos.json, provincias.json, distritos.json).
type FileResolver struct {
	departments map[string]Entry   // keyed by 2-digit code
	provinces   map[string][]Entry // keyed by department id
	districts   map[string][]Entry // keyed by province id

	raw map[string][]byte
}

// NewFileResolver loads the dictionaries from dir.
func NewFileResolver(dir string) (*FileResolver, error) {
	r := &FileResolver{
		departments: make(map[string]Entry),
		provinces:   make(map[string][]Entry),
		districts:   make(map[string][]Entry),
		raw:         make(map[string][]byte),
	}

	var departments []Entry
	if err := r.loadFile(dir, "departamentos", &departments); err != nil {
		return nil, err
	}
	for _, dep := range departments {
		r.departments[dep.Code] = dep
	}

	if err := r.loadFile(dir, "provincias", &r.provinces); err != nil {
		return nil, err
	}
	if err := r.loadFile(dir, "distritos", &r.districts); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *FileResolver) loadFile(dir, name string, dest interface{}) error {
	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ubigeo file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse ubigeo file %s: %w", path, err)
	}
	r.raw[name] = data
	return nil
}

// Department resolves a 2-digit department code.
func (r *FileResolver) Department(code string) (Entry, bool) {
	dep, ok := r.departments[code]
	return dep, ok
}

// Province resolves a 4-digit province code scoped under a department.
func (r *FileResolver) Province(departmentID, code string) (Entry, bool) {
	return matchSuffix(r.provinces[departmentID], code)
}

// District resolves a 6-digit district code scoped under a province.
func (r *FileResolver) District(provinceID, code string) (Entry, bool) {
	return matchSuffix(r.districts[provinceID], code)
}

// Raw returns the original bytes of a dictionary file for direct serving.
func (r *FileResolver) Raw(name string) ([]byte, bool) {
	data, ok := r.raw[name]
	return data, ok
}

func matchSuffix(entries []Entry, code string) (Entry, bool) {
	if len(code) < 2 {
		return Entry{}, false
	}
	suffix := code[len(code)-2:]
	for _, e := range entries {
		if strings.EqualFold(e.Code, suffix) {
			return e, true
		}
	}
	return Entry{}, false
}
