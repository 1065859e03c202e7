package soak

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config shapes a soak run. Zero engine fields take defaults in
// NewEngine; empty JournalDir, broker or address fields leave the
// matching output disabled. Durations in the file are nanosecond
// integers.
type Config struct {
	Slots          int           `yaml:"slots" json:"slots"`
	Readers        int           `yaml:"readers" json:"readers"`
	PoolCapacity   int           `yaml:"pool_capacity" json:"pool_capacity"`
	Duration       time.Duration `yaml:"duration" json:"duration"`
	SampleInterval time.Duration `yaml:"sample_interval" json:"sample_interval"`
	RingSize       uint64        `yaml:"ring_size" json:"ring_size"`

	JournalDir   string   `yaml:"journal_dir" json:"journal_dir"`
	KafkaBrokers []string `yaml:"kafka_brokers" json:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic" json:"kafka_topic"`
	TapTopic     string   `yaml:"tap_topic" json:"tap_topic"`
	MetricsAddr  string   `yaml:"metrics_addr" json:"metrics_addr"`
	RPCAddr      string   `yaml:"rpc_addr" json:"rpc_addr"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("soak: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("soak: parse config %s: %w", path, err)
	}
	return cfg, nil
}

func nextPow2(v uint64) uint64 {
	n := uint64(1)
	for n < v {
		n <<= 1
	}
	return n
}
