/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// RemoteConf is one ACL rule's remote specification (spec.md §6).
type RemoteConf struct {
	Family  string `yaml:"family"`
	Address string `yaml:"address"`
	Port    uint16 `yaml:"port"`
}

// ACLConf carries the four configured ACLs as lists of remotes. Each
// list entry holds family/address/port directly; there is no "remote"
// wrapper key around them.
type ACLConf struct {
	XfrIn     []RemoteConf `yaml:"xfr_in"`
	XfrOut    []RemoteConf `yaml:"xfr_out"`
	NotifyIn  []RemoteConf `yaml:"notify_in"`
	NotifyOut []RemoteConf `yaml:"notify_out"`
}

// ZoneConf is the external, per-zone configuration consumed by the
// Reconciler (C5), per spec.md §6.
type ZoneConf struct {
	Name string  `yaml:"name" validate:"required"`
	File string  `yaml:"file" validate:"required"` // source path
	Db   string  `yaml:"db" validate:"required"`   // compiled path
	ACL  ACLConf `yaml:"acl"`
}

// ZoneList is the shape of the side YAML file holding the zone set,
// mirroring tdnsd's Zconfig workaround for viper's map-keyed-by-name
// limitation.
type ZoneList struct {
	Zones map[string]ZoneConf `yaml:"zones"`
}

type ServiceConf struct {
	Name                string `mapstructure:"name" validate:"required"`
	Refresh             bool   `mapstructure:"refresh"`
	MaxRefresh          int    `mapstructure:"maxrefresh"`
	ExpireRemovesZone   bool   `mapstructure:"expire_removes_zone"`
	AutoReloadZoneFile  bool   `mapstructure:"auto_reload_zone_file"`
	ReloadDebounceMs    int    `mapstructure:"reload_debounce_ms"`
}

type DnsEngineConf struct {
	Addresses []string `mapstructure:"addresses"`
}

type LogConf struct {
	File string `mapstructure:"file"`
}

// MetricsConf configures the Prometheus /metrics endpoint cmd/zoned
// serves (SPEC_FULL.md §3.2).
type MetricsConf struct {
	Addr string `mapstructure:"addr"`
}

// Config is the top-level server configuration, validated section by
// section the way tdns/tdnsd's ValidateBySection does.
type Config struct {
	Service   ServiceConf   `mapstructure:"service"`
	DnsEngine DnsEngineConf `mapstructure:"dnsengine"`
	Log       LogConf       `mapstructure:"log"`
	Metrics   MetricsConf   `mapstructure:"metrics"`

	ZonesFile string `mapstructure:"zonesfile"`

	Internal InternalConf `mapstructure:"-"`
}

// InternalConf holds process-internal wiring that is never unmarshalled
// from the config file (spec.md's Config.Internal in the teacher).
type InternalConf struct {
	NS *NameServer
}

// LoadConfig reads the viper-managed config file into a Config and
// validates its required sections, matching tdnsd's ParseConfig/ValidateConfig.
func LoadConfig(v *viper.Viper, cfgfile string) (*Config, error) {
	v.SetConfigFile(cfgfile)
	v.SetDefault("service.expire_removes_zone", true)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("LoadConfig: unmarshal: %w", err)
	}

	if err := validateBySection(map[string]interface{}{
		"service": conf.Service,
		"log":     conf.Log,
	}); err != nil {
		return nil, err
	}

	return &conf, nil
}

func validateBySection(sections map[string]interface{}) error {
	validate := validator.New()
	for name, data := range sections {
		if err := validate.Struct(data); err != nil {
			return fmt.Errorf("config section %q: %w", name, err)
		}
	}
	return nil
}

// LoadZoneList reads and validates the zone-list side file named by
// Config.ZonesFile, the way tdnsd reads its tdns-zones.yaml.
func LoadZoneList(path string) ([]ZoneConf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadZoneList: %w", err)
	}

	var zl ZoneList
	if err := yaml.Unmarshal(data, &zl); err != nil {
		return nil, fmt.Errorf("LoadZoneList: yaml: %w", err)
	}

	validate := validator.New()
	zones := make([]ZoneConf, 0, len(zl.Zones))
	for name, zc := range zl.Zones {
		if zc.Name == "" {
			zc.Name = name
		}
		if err := validate.Struct(zc); err != nil {
			log.Printf("LoadZoneList: zone %q: skipping, invalid config: %v", name, err)
			continue
		}
		zones = append(zones, zc)
	}
	return zones, nil
}
