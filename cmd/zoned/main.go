/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/axfrcore/zoned/zoned"
)

const defaultMetricsAddr = ":9153"

var appVersion string

const (
	defaultCfgFile   = "/etc/zoned/zoned.yaml"
	defaultZonesFile = "/etc/zoned/zones.yaml"
)

func main() {
	var cfgFile, zonesFile string

	rootCmd := &cobra.Command{
		Use:   "zoned",
		Short: "Authoritative zone-database daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgFile, zonesFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultCfgFile, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&zonesFile, "zones", defaultZonesFile, "Path to zone-list file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("zoned version %s\n", appVersion)
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfgFile, zonesFile string) error {
	v := viper.New()
	conf, err := zoned.LoadConfig(v, cfgFile)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	conf.ZonesFile = zonesFile

	zoned.SetupLogging(conf.Log.File)
	log.Printf("zoned version %s starting, logging to %s", appVersion, conf.Log.File)

	ns := zoned.NewNameServer()
	ns.ExpireRemovesZone = conf.Service.ExpireRemovesZone
	conf.Internal.NS = ns

	if err := ns.Ifaces.BindAddresses(conf.DnsEngine.Addresses); err != nil {
		log.Printf("run: interface binding: %v", err)
	}

	go ns.Sched.Run()
	go serveMetrics(ns, conf.Metrics.Addr)

	if err := reload(conf, ns); err != nil {
		return fmt.Errorf("run: initial load: %w", err)
	}

	if conf.Service.AutoReloadZoneFile {
		watcher, err := zoned.NewZoneFileWatcher(conf.ZonesFile, conf.Service.ReloadDebounceMs, func() {
			if err := reload(conf, ns); err != nil {
				log.Printf("run: auto-reload: %v", err)
			}
		})
		if err != nil {
			log.Printf("run: zone-file watcher disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	mainloop(conf, ns)
	return nil
}

// serveMetrics exposes ns's Prometheus registry on /metrics, matching
// user00265-rbldnsd/metrics/metrics.go's promhttp.Handler wiring. addr
// defaults to defaultMetricsAddr when unset in config.
func serveMetrics(ns *zoned.NameServer, addr string) {
	if addr == "" {
		addr = defaultMetricsAddr
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(ns.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	log.Printf("serveMetrics: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("serveMetrics: %v", err)
	}
}

// reload loads the zone list from disk and hands it to the Swap
// Coordinator (C6); the returned old database is simply left for the
// garbage collector, matching spec.md §4.6's "no explicit free" note.
func reload(conf *zoned.Config, ns *zoned.NameServer) error {
	zones, err := zoned.LoadZoneList(conf.ZonesFile)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	_, err = zoned.UpdateDBFromConfig(ns, zones, zoned.OpenMasterFile)
	return err
}

// mainloop is zoned's signal dispatcher: SIGHUP forces a reconciliation
// pass over the configured zones, SIGINT/SIGTERM shut the scheduler down
// and return. Grounded on tdnsd/main.go's mainloop.
func mainloop(conf *zoned.Config, ns *zoned.NameServer) {
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	hupper := make(chan os.Signal, 1)
	signal.Notify(hupper, syscall.SIGHUP)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		for {
			select {
			case <-exit:
				log.Println("mainloop: exit signal received, shutting down")
				ns.Sched.Stop()
				wg.Done()
				return
			case <-hupper:
				log.Println("mainloop: SIGHUP received, forcing zone reconciliation")
				if err := reload(conf, ns); err != nil {
					log.Printf("mainloop: reload failed: %v", err)
				}
			}
		}
	}()
	wg.Wait()
}
