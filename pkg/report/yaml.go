package report

import "gopkg.in/yaml.v3"

// writeYAMLFile marshals v and writes it to a newly created file at path.
func writeYAMLFile(path string, v any) error {
	f, err := createNewFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()
	return enc.Encode(v)
}
