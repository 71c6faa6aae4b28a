package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"scaledemo/internal/banner"
	"scaledemo/internal/cli"
	"scaledemo/internal/cluster"
	"scaledemo/internal/report"
	"scaledemo/internal/scenario"
	"scaledemo/internal/storage"
	"scaledemo/internal/target"
)

var (
	cfgFile string

	// CLI Flags
	targetURL      string
	kubectlContext string
	kubectlBin     string
	namespace      string
	selector       string
	hpaName        string
	duration       int
	outDir         string
	cooldown       int
	timeout        int
)

var rootCmd = &cobra.Command{
	Use:   "scaledemo",
	Short: "Scaledemo - Kubernetes Autoscaling Demo Harness",
	Long: `
Scaledemo drives synthetic load against a target service while watching
the cluster's autoscaler react, then reports what happened.

Scenarios:
1. scenario1 - Gradual ramp (scale-out)
2. scenario2 - Load spike (rapid scaling)
3. scenario3 - Sustained load (stability)
4. scenario4 - CPU-intensive burst (CPU-based scaling)`,
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.scaledemo.yaml)")
	rootCmd.PersistentFlags().StringVarP(&targetURL, "url", "u", "", "Target application base URL")
	rootCmd.PersistentFlags().StringVar(&kubectlContext, "kubectl-context", "", "Kubectl context to use")
	rootCmd.PersistentFlags().StringVar(&kubectlBin, "kubectl", "kubectl", "Kubectl binary")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "cloudapp", "Workload namespace")
	rootCmd.PersistentFlags().StringVarP(&selector, "selector", "l", "app=cloudapp", "Pod label selector")
	rootCmd.PersistentFlags().StringVar(&hpaName, "hpa", "cloudapp-hpa", "Horizontal pod autoscaler name")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out-dir", "o", ".", "Directory for result artifacts")
	rootCmd.PersistentFlags().IntVar(&cooldown, "cooldown", 30, "Cooldown between scenarios in seconds")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 30, "Request timeout in seconds")

	viper.BindPFlag("kubectl", rootCmd.PersistentFlags().Lookup("kubectl"))
	viper.BindPFlag("namespace", rootCmd.PersistentFlags().Lookup("namespace"))
	viper.BindPFlag("selector", rootCmd.PersistentFlags().Lookup("selector"))
	viper.BindPFlag("hpa", rootCmd.PersistentFlags().Lookup("hpa"))

	for _, sc := range scenario.Builtin() {
		rootCmd.AddCommand(scenarioCommand(sc))
	}
	rootCmd.AddCommand(allCmd, monitorCmd, reportCmd, historyCmd, serveCmd)

	monitorCmd.Flags().IntVarP(&duration, "duration", "d", 300, "Monitoring duration in seconds")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".scaledemo")
		}
	}
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

// signalContext is cancelled on SIGINT/SIGTERM so a demo aborts cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLogger() *zap.Logger {
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func clusterConfig() cluster.KubectlConfig {
	return cluster.KubectlConfig{
		Binary:    viper.GetString("kubectl"),
		Context:   kubectlContext,
		Namespace: viper.GetString("namespace"),
		Selector:  viper.GetString("selector"),
		HPAName:   viper.GetString("hpa"),
	}
}

func requireURL(cmd *cobra.Command, args []string) error {
	if targetURL == "" {
		return fmt.Errorf("--url is required")
	}
	return nil
}

func newOrchestrator(log *zap.Logger) (*scenario.Orchestrator, *storage.Store, error) {
	provider := cluster.NewKubectlProvider(clusterConfig(), log)

	// History is best effort: a broken local store must not block a demo.
	var hist *storage.Store
	if path, err := storage.DefaultPath(); err == nil {
		if s, err := storage.Open(path); err == nil {
			hist = s
		} else {
			log.Warn("history store unavailable", zap.Error(err))
		}
	}

	orch, err := scenario.NewOrchestrator(scenario.Config{
		BaseURL:        targetURL,
		Provider:       provider,
		OutDir:         outDir,
		RequestTimeout: time.Duration(timeout) * time.Second,
		Cooldown:       time.Duration(cooldown) * time.Second,
		History:        hist,
		Log:            log,
	})
	if err != nil {
		if hist != nil {
			hist.Close()
		}
		return nil, nil, err
	}
	return orch, hist, nil
}

func scenarioCommand(sc scenario.Scenario) *cobra.Command {
	return &cobra.Command{
		Use:     sc.Name,
		Short:   sc.Title,
		PreRunE: requireURL,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			log := newLogger()
			defer log.Sync()

			orch, hist, err := newOrchestrator(log)
			if err != nil {
				return err
			}
			if hist != nil {
				defer hist.Close()
			}

			_, err = orch.RunScenario(ctx, sc)
			return err
		},
	}
}

var allCmd = &cobra.Command{
	Use:     "all",
	Short:   "Run all demo scenarios in sequence",
	PreRunE: requireURL,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		log := newLogger()
		defer log.Sync()

		orch, hist, err := newOrchestrator(log)
		if err != nil {
			return err
		}
		if hist != nil {
			defer hist.Close()
		}

		return orch.RunAll(ctx)
	},
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch autoscaling state without generating load",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		log := newLogger()
		defer log.Sync()

		provider := cluster.NewKubectlProvider(clusterConfig(), log)
		monitor := cluster.NewMonitor(provider, cluster.MonitorConfig{
			MaxDuration: time.Duration(duration) * time.Second,
		})
		if err := monitor.Start(ctx); err != nil {
			return err
		}
		monitor.Wait()
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Merge scenario artifacts into a demo report",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := report.BuildDemoReport(outDir, scenario.Names(), os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("Demo report saved to: %s\n", path)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past demo runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := storage.DefaultPath()
		if err != nil {
			return err
		}
		s, err := storage.Open(path)
		if err != nil {
			return err
		}
		defer s.Close()

		cli.PrintHistory(os.Stdout, s.List())
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo target service (task API)",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer log.Sync()

		cfg, err := target.LoadConfig()
		if err != nil {
			return err
		}

		var store target.TaskStore
		if cfg.MemoryStore {
			store = target.NewMemoryStore()
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			store, err = target.NewPostgresStore(ctx, cfg.DSN())
			if err != nil {
				return err
			}
		}
		defer store.Close()

		return target.ListenAndServe(cfg, store, log)
	},
}
