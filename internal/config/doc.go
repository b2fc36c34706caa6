// Package config provides configuration parsing for didact.
//
// The configuration is stored in an optional didact.yaml next to where the
// CLI runs. Missing files and missing keys fall back to defaults.
//
// # Configuration File Structure
//
//	scheduler:
//	  frameInterval: 16ms
//	  frameBudget: 12ms
//	  yieldThreshold: 1ms
//	metrics:
//	  enabled: true
//	  namespace: didact
//	server:
//	  addr: localhost:7070
//	log:
//	  level: info
//	  format: text
//
// # Usage
//
//	cfg, err := config.LoadOptional(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Frame budget:", cfg.Scheduler.FrameBudget)
package config
