package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Mapping holds the ordered candidate header spellings for each
// canonical field. Resolution is exact (case- and accent-sensitive)
// first-match, so order is priority.
type Mapping struct {
	Key         []string `yaml:"key"`
	Description []string `yaml:"description"`
	Price       []string `yaml:"price"`
}

// DefaultMapping returns the built-in candidate spellings, matching the
// header variants seen in the reference inventory exports.
func DefaultMapping() Mapping {
	return Mapping{
		Key:         []string{"Clave", "clave", "CLAVE", "Codigo", "codigo", "SKU", "sku"},
		Description: []string{"Descripción", "Descripcion", "descripcion", "Nombre", "nombre"},
		Price:       []string{"Precio", "precio", "PRECIO", "Costo", "costo"},
	}
}

// LoadMapping reads extra candidate spellings from a YAML file and
// appends them after the defaults, so the built-in spellings keep
// priority. An empty path returns the defaults unchanged.
func LoadMapping(path string) (Mapping, error) {
	m := DefaultMapping()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, eris.Wrap(err, "normalize: read mapping file")
	}

	var extra Mapping
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return Mapping{}, eris.Wrap(err, "normalize: parse mapping file")
	}

	m.Key = append(m.Key, extra.Key...)
	m.Description = append(m.Description, extra.Description...)
	m.Price = append(m.Price, extra.Price...)
	return m, nil
}
