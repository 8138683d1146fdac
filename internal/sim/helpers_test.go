package sim

import "gopkg.in/yaml.v3"

func yamlUnmarshal(input string, out interface{}) error {
	return yaml.Unmarshal([]byte(input), out)
}
