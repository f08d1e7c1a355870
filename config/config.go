// Package config holds the run configuration of the deepsleep command. Values
// come from defaults, then from an optional .env file and the environment,
// then from command-line flags, all merged by viper.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sarchlab/deepsleep/controller"
	"github.com/sarchlab/deepsleep/retention"
)

// DefaultEnvFile is read when no env file is given and it exists.
const DefaultEnvFile = ".env"

// EnvPrefix starts the name of every environment variable read, followed by
// an underscore.
const EnvPrefix = "DEEPSLEEP"

// Setting keys. A key is also the name of the flag that sets it, and
// upper-cased after EnvPrefix, with dashes turned into underscores, the name
// of its environment variable.
const (
	keyCycles        = "cycles"
	keyBoard         = "board"
	keyLEDPin        = "led-pin"
	keyBaud          = "baud"
	keyAttachDelayMs = "attach-delay-ms"
	keyAwakeMs       = "awake-ms"
	keySleepSeconds  = "sleep-seconds"
	keyBlinkMs       = "blink-ms"
	keyRetention     = "retention"
	keyRetentionPath = "retention-path"
	keyRecord        = "record"
	keyRecordPath    = "record-path"
	keyMonitor       = "monitor"
	keyMonitorPort   = "monitor-port"
	keyOpenBrowser   = "open-browser"
	keyLogEvents     = "log-events"
	keyRealTime      = "realtime"
)

var envKeyReplacer = strings.NewReplacer("-", "_")

// Config is the configuration of one run.
type Config struct {
	Cycles          int
	BoardName       string
	LEDPin          int
	BaudRate        uint32
	AttachDelay     time.Duration
	AwakeTime       time.Duration
	WakeInterval    time.Duration
	BlinkHalfPeriod time.Duration

	Retention     retention.Kind
	RetentionPath string

	Record     bool
	RecordPath string

	Monitor     bool
	MonitorPort int
	OpenBrowser bool

	LogEvents bool
	RealTime  float64
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	c := controller.DefaultConfig()

	return Config{
		Cycles:          3,
		BoardName:       c.BoardName,
		LEDPin:          c.LEDPin,
		BaudRate:        c.BaudRate,
		AttachDelay:     c.AttachDelay,
		AwakeTime:       c.AwakeTime,
		WakeInterval:    c.WakeInterval,
		BlinkHalfPeriod: c.BlinkHalfPeriod,
		Retention:       retention.KindFile,
		RetentionPath:   "deepsleep_retention.json",
	}
}

// Load returns the default configuration overridden, from the lowest
// priority up, by the env file, the environment and the flags that were set.
// An empty env file name reads DefaultEnvFile if it exists. Flags may be nil.
//
// Setting a recording path turns recording on, and setting a monitor port
// turns the monitor on.
func Load(envFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v, Default())

	fileEnv, err := readEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}

	err = v.MergeConfigMap(settingsFromEnv(fileEnv))
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if flags != nil {
		err = v.BindPFlags(flags)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	return decode(v)
}

func readEnvFile(envFile string) (map[string]string, error) {
	if envFile == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil, nil
		}

		envFile = DefaultEnvFile
	}

	env, err := godotenv.Read(envFile)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", envFile, err)
	}

	return env, nil
}

// EnvName returns the environment variable that sets a key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(key))
}

// settingsFromEnv turns the prefixed variables of an env file into settings.
// Empty values are skipped, as they are in the environment.
func settingsFromEnv(env map[string]string) map[string]any {
	settings := make(map[string]any)

	for name, value := range env {
		key, ok := strings.CutPrefix(name, EnvPrefix+"_")
		if !ok || value == "" {
			continue
		}

		key = strings.ToLower(strings.ReplaceAll(key, "_", "-"))
		settings[key] = value
	}

	return settings
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault(keyCycles, d.Cycles)
	v.SetDefault(keyBoard, d.BoardName)
	v.SetDefault(keyLEDPin, d.LEDPin)
	v.SetDefault(keyBaud, d.BaudRate)
	v.SetDefault(keyAttachDelayMs, d.AttachDelay.Milliseconds())
	v.SetDefault(keyAwakeMs, d.AwakeTime.Milliseconds())
	v.SetDefault(keySleepSeconds, d.WakeInterval.Seconds())
	v.SetDefault(keyBlinkMs, d.BlinkHalfPeriod.Milliseconds())
	v.SetDefault(keyRetention, string(d.Retention))
	v.SetDefault(keyRetentionPath, d.RetentionPath)
	v.SetDefault(keyRecord, d.Record)
	v.SetDefault(keyRecordPath, d.RecordPath)
	v.SetDefault(keyMonitor, d.Monitor)
	v.SetDefault(keyMonitorPort, d.MonitorPort)
	v.SetDefault(keyOpenBrowser, d.OpenBrowser)
	v.SetDefault(keyLogEvents, d.LogEvents)
	v.SetDefault(keyRealTime, d.RealTime)
}

func decode(v *viper.Viper) (Config, error) {
	c := Default()
	d := decoder{v: v}

	d.int(keyCycles, &c.Cycles)
	d.string(keyBoard, &c.BoardName)
	d.int(keyLEDPin, &c.LEDPin)
	d.uint32(keyBaud, &c.BaudRate)
	d.millis(keyAttachDelayMs, &c.AttachDelay)
	d.millis(keyAwakeMs, &c.AwakeTime)
	d.seconds(keySleepSeconds, &c.WakeInterval)
	d.millis(keyBlinkMs, &c.BlinkHalfPeriod)

	var kind string
	d.string(keyRetention, &kind)
	c.Retention = retention.Kind(kind)
	d.string(keyRetentionPath, &c.RetentionPath)

	d.bool(keyRecord, &c.Record)
	d.string(keyRecordPath, &c.RecordPath)
	d.bool(keyMonitor, &c.Monitor)
	d.int(keyMonitorPort, &c.MonitorPort)
	d.bool(keyOpenBrowser, &c.OpenBrowser)
	d.bool(keyLogEvents, &c.LogEvents)
	d.float(keyRealTime, &c.RealTime)

	if len(d.errs) > 0 {
		return Config{}, errors.Join(d.errs...)
	}

	c.Record = c.Record || c.RecordPath != ""
	c.Monitor = c.Monitor || c.MonitorPort != 0

	return c, nil
}

// Controller returns the configuration of the program.
func (c Config) Controller() controller.Config {
	return controller.Config{
		BoardName:       c.BoardName,
		LEDPin:          c.LEDPin,
		BaudRate:        c.BaudRate,
		AttachDelay:     c.AttachDelay,
		WakeInterval:    c.WakeInterval,
		AwakeTime:       c.AwakeTime,
		BlinkHalfPeriod: c.BlinkHalfPeriod,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	errs := []error{c.Controller().Validate()}

	if c.Cycles < 0 {
		errs = append(errs, errors.New("cycles cannot be negative"))
	}

	switch c.Retention {
	case retention.KindMemory:
	case retention.KindFile, retention.KindSQLite:
		if c.RetentionPath == "" {
			errs = append(errs,
				fmt.Errorf("%s retention needs a path", c.Retention))
		}
	default:
		errs = append(errs,
			fmt.Errorf("unknown retention kind %q", c.Retention))
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid monitor port %d", c.MonitorPort))
	}

	if c.OpenBrowser && !c.Monitor {
		errs = append(errs, errors.New("browser needs the monitor"))
	}

	if c.RealTime < 0 {
		errs = append(errs, errors.New("real time speed cannot be negative"))
	}

	return errors.Join(errs...)
}

// OpenStore opens the retention store.
func (c Config) OpenStore() (retention.Store, error) {
	return retention.Open(c.Retention, c.RetentionPath)
}

var errNegative = errors.New("cannot be negative")

// decoder converts settings with cast, collecting an error per bad value.
type decoder struct {
	v    *viper.Viper
	errs []error
}

func (d *decoder) fail(key string, err error) {
	d.errs = append(d.errs, fmt.Errorf("config: %s (%s) = %q: %w",
		key, EnvName(key), cast.ToString(d.v.Get(key)), err))
}

func (d *decoder) string(key string, dst *string) {
	s, err := cast.ToStringE(d.v.Get(key))
	if err != nil {
		d.fail(key, err)
		return
	}

	*dst = s
}

func (d *decoder) int(key string, dst *int) {
	n, err := cast.ToIntE(d.v.Get(key))
	if err != nil {
		d.fail(key, err)
		return
	}

	*dst = n
}

func (d *decoder) uint32(key string, dst *uint32) {
	n, err := cast.ToUint32E(d.v.Get(key))
	if err != nil {
		d.fail(key, err)
		return
	}

	*dst = n
}

func (d *decoder) float(key string, dst *float64) {
	f, err := cast.ToFloat64E(d.v.Get(key))
	if err != nil {
		d.fail(key, err)
		return
	}

	*dst = f
}

func (d *decoder) bool(key string, dst *bool) {
	b, err := cast.ToBoolE(d.v.Get(key))
	if err != nil {
		d.fail(key, err)
		return
	}

	*dst = b
}

func (d *decoder) millis(key string, dst *time.Duration) {
	n, err := cast.ToInt64E(d.v.Get(key))
	if err == nil && n < 0 {
		err = errNegative
	}

	if err != nil {
		d.fail(key, err)
		return
	}

	*dst = time.Duration(n) * time.Millisecond
}

func (d *decoder) seconds(key string, dst *time.Duration) {
	f, err := cast.ToFloat64E(d.v.Get(key))
	if err == nil && (f < 0 || math.IsNaN(f)) {
		err = errNegative
	}

	if err != nil {
		d.fail(key, err)
		return
	}

	*dst = time.Duration(f * float64(time.Second))
}
