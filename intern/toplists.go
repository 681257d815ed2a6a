package intern

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

//go:embed toplists/*.yaml
var embeddedTopLists embed.FS

// topListFile mirrors one toplists/<column>.yaml document.
type topListFile struct {
	Names []string `yaml:"names"`
}

// TopNFor loads the curated top-N preload list for a column. If dir is
// non-empty it is read from <dir>/<column>.yaml, overriding the list
// embedded at build time (see config.Config.TopListDir); a missing file
// in dir is treated as "no preload for this column", not an error. With
// an empty dir, the embedded default for the column is used, or an empty
// list if no default exists for it (e.g. name/desc, which are free text
// and not worth seeding).
func TopNFor(column, dir string) ([]string, error) {
	if dir != "" {
		path := filepath.Join(dir, column+".yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("intern: reading top-N override %s: %w", path, err)
		}
		return parseTopList(data)
	}

	data, err := embeddedTopLists.ReadFile("toplists/" + column + ".yaml")
	if err != nil {
		return nil, nil
	}
	return parseTopList(data)
}

func parseTopList(data []byte) ([]string, error) {
	var f topListFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("intern: parsing top-N list: %w", err)
	}
	return f.Names, nil
}
