package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/pubky-garden/pubky-playground/specs"
)

type Config struct {
	NodeInfo NodeInfo `yaml:"nodeInfo"`
	Server   Server   `yaml:"server"`
}

type NodeInfo struct {
	FQDN      string `yaml:"fqdn"`
	Namespace string `yaml:"namespace"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.NodeInfo.Namespace == "" {
		config.NodeInfo.Namespace = specs.Namespace
	}
	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}

	return config, nil
}
