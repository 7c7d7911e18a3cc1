package config

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr        string
		AllowReseed bool
	}
	Database struct {
		Path string
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Report struct {
		TopBorrowers int
	}
	Seed struct {
		Books    int
		Users    int
		MinLoans int
		MaxLoans int
		Random   int64
	}
}

// Load reads configuration from environment variables and optional config files.
// Flags that were set on the command line override both.
func Load(flags *pflag.FlagSet) (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("LIBSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.allowreseed", false)
	v.SetDefault("database.path", "instance/library.db")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "library-reports")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("report.topborrowers", 3)
	v.SetDefault("seed.books", 100)
	v.SetDefault("seed.users", 5)
	v.SetDefault("seed.minloans", 3)
	v.SetDefault("seed.maxloans", 10)
	v.SetDefault("seed.random", 0)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Seed.MinLoans > cfg.Seed.MaxLoans {
		return Config{}, fmt.Errorf("seed.minloans (%d) exceeds seed.maxloans (%d)", cfg.Seed.MinLoans, cfg.Seed.MaxLoans)
	}

	return cfg, nil
}

// bindFlags maps flags named like "database-path" onto the "database.path" key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", ".")
		if !slices.Contains(v.AllKeys(), key) {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
