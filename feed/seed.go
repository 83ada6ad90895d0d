package feed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/vinnote-client/api"
	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/tastings"
	"gopkg.in/yaml.v3"
)

// LoadSeedFile reads fallback tastings from a .json, .yaml or .yml file. JSON files may use
// any shape the feed endpoint returns; YAML files hold a list or a "tastings" key.
func LoadSeedFile(path string) ([]tastings.Tasting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[feed.LoadSeedFile] reading %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLSeed(data)
	default:
		return parseJSONSeed(data)
	}
}

func parseJSONSeed(data []byte) ([]tastings.Tasting, error) {
	var res api.FeedResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrapf(err, "[feed.LoadSeedFile] decoding JSON")
	}

	out := make([]tastings.Tasting, 0, len(res.Tastings))
	for i, raw := range res.Tastings {
		t, err := tastings.Decode(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "[feed.LoadSeedFile] item %d", i)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseYAMLSeed(data []byte) ([]tastings.Tasting, error) {
	var list []tastings.Tasting
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc struct {
		Tastings []tastings.Tasting `yaml:"tastings"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "[feed.LoadSeedFile] decoding YAML")
	}
	return doc.Tastings, nil
}
