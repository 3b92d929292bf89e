package config

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/intree/src/peers"
)

func TestDefaultConfigIsValid(t *testing.T) {
	conf := NewDefaultConfig()
	if err := conf.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	if _, ok := conf.Destination(); ok {
		t.Fatal("default config should have no destination")
	}
	if conf.HelloPeriod != 30 || conf.IntreePeriod != 10 || conf.DataPeriod != 15 {
		t.Fatalf("unexpected periods %d/%d/%d", conf.HelloPeriod, conf.IntreePeriod, conf.DataPeriod)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"id", func(c *Config) { c.NodeID = 10 }},
		{"negative id", func(c *Config) { c.NodeID = -1 }},
		{"dest", func(c *Config) { c.Dest = 10 }},
		{"dest below none", func(c *Config) { c.Dest = -2 }},
		{"nodes", func(c *Config) { c.NumNodes = 0 }},
		{"hello", func(c *Config) { c.HelloPeriod = 0 }},
		{"epoch", func(c *Config) { c.LivenessEpoch = c.HelloPeriod }},
		{"transport", func(c *Config) { c.Transport = "tcp" }},
		{"store", func(c *Config) { c.Store = "sql" }},
		{"message newline", func(c *Config) { c.Dest = 1; c.Message = "a\nb" }},
		{"message carriage return", func(c *Config) { c.Dest = 1; c.Message = "a\rb" }},
	}

	for _, c := range cases {
		conf := NewTestConfig(t, logrus.InfoLevel)
		c.mutate(conf)
		if err := conf.Validate(); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestPaths(t *testing.T) {
	conf := NewDefaultConfig()
	conf.SetDataDir("/tmp/intree")

	if got := conf.DatabaseDir; got != filepath.Join("/tmp/intree", DefaultBadgerFile) {
		t.Fatalf("DatabaseDir = %s", got)
	}
	if got := conf.TopologyPath(); got != filepath.Join("/tmp/intree", peers.DefaultTopologyFile) {
		t.Fatalf("TopologyPath = %s", got)
	}
	if got := conf.ChannelPath(); got != filepath.Join("/tmp/intree", DefaultChannelDir) {
		t.Fatalf("ChannelPath = %s", got)
	}

	conf.TopologyFile = "/etc/topo"
	conf.ChannelDir = "/var/chan"
	if conf.TopologyPath() != "/etc/topo" || conf.ChannelPath() != "/var/chan" {
		t.Fatal("absolute paths should be kept")
	}

	conf.DatabaseDir = "/elsewhere"
	conf.SetDataDir("/tmp/other")
	if conf.DatabaseDir != "/elsewhere" {
		t.Fatal("explicit DatabaseDir should not be overwritten")
	}
}

func TestDestination(t *testing.T) {
	conf := NewDefaultConfig()
	conf.Dest = 5
	d, ok := conf.Destination()
	if !ok || d != 5 {
		t.Fatalf("Destination() = %v, %v", d, ok)
	}
}

func TestLogLevel(t *testing.T) {
	if LogLevel("warn") != logrus.WarnLevel {
		t.Fatal("warn")
	}
	if LogLevel("bogus") != logrus.DebugLevel {
		t.Fatal("unknown levels default to debug")
	}
}
