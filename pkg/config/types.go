package config

type Config struct {
	Root       string `yaml:"root"`
	DefaultMod string `yaml:"defaultMod"`
	UseIndex   bool   `yaml:"useIndex"`
	Debug      bool   `yaml:"debug"`
}
