package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"photo-culler/internal/database"
	"photo-culler/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	SourceDir   string
	DatabaseDir string
	Port        string
	MetricsPort string

	MaxWidth       int
	MaxHeight      int
	CacheCapacity  int
	PrefetchWindow int
	// PrefetchWorkers is zero when the pool should be sized from the CPU count.
	PrefetchWorkers int
	PrefetchQueue   int

	ResizeBackend string
	ResizeFilter  string

	AuthEnabled     bool
	MetricsEnabled  bool
	LogStaticFiles  bool
	LogHealthChecks bool

	// Derived paths
	DatabasePath string
	LockPath     string
}

// LoadConfig loads and validates configuration from environment variables.
// A .env file in the working directory is read first when present; variables
// already set in the environment win.
func LoadConfig() (*Config, error) {
	envFileLoaded := loadDotEnv()

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if envFileLoaded {
		logging.Info("  Loaded .env file")
	}

	config := &Config{
		SourceDir:       getEnv("SOURCE_DIR", ""),
		DatabaseDir:     getEnv("DATABASE_DIR", "/database"),
		Port:            getEnv("PORT", "8080"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MaxWidth:        getEnvInt("MAX_WIDTH", 1920),
		MaxHeight:       getEnvInt("MAX_HEIGHT", 1080),
		CacheCapacity:   getEnvInt("CACHE_CAPACITY", 5),
		PrefetchWindow:  getEnvInt("PREFETCH_WINDOW", 5),
		PrefetchWorkers: getEnvInt("PREFETCH_WORKERS", 0),
		PrefetchQueue:   getEnvInt("PREFETCH_QUEUE", 64),
		ResizeBackend:   strings.ToLower(getEnv("RESIZE_BACKEND", "native")),
		ResizeFilter:    strings.ToLower(getEnv("RESIZE_FILTER", "lanczos3")),
		AuthEnabled:     getEnvBool("AUTH_ENABLED", false),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		LogStaticFiles:  getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),
	}

	logging.Info("  SOURCE_DIR:          %s", valueOrNone(config.SourceDir))
	logging.Info("  DATABASE_DIR:        %s", config.DatabaseDir)
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  MAX_WIDTH:           %d", config.MaxWidth)
	logging.Info("  MAX_HEIGHT:          %d", config.MaxHeight)
	logging.Info("  CACHE_CAPACITY:      %d", config.CacheCapacity)
	logging.Info("  PREFETCH_WINDOW:     %d", config.PrefetchWindow)
	logging.Info("  PREFETCH_WORKERS:    %s", workersString(config.PrefetchWorkers))
	logging.Info("  PREFETCH_QUEUE:      %d", config.PrefetchQueue)
	logging.Info("  RESIZE_BACKEND:      %s", config.ResizeBackend)
	logging.Info("  RESIZE_FILTER:       %s", config.ResizeFilter)
	logging.Info("  AUTH_ENABLED:        %v", config.AuthEnabled)
	logging.Info("  LOG_STATIC_FILES:    %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	if err := config.validate(); err != nil {
		return nil, err
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	databaseDir, err := filepath.Abs(config.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	config.DatabaseDir = databaseDir
	config.DatabasePath = filepath.Join(databaseDir, database.FileName)
	config.LockPath = filepath.Join(databaseDir, database.FileName+".lock")
	logging.Info("  Database directory (absolute): %s", databaseDir)

	if config.SourceDir != "" {
		sourceDir, err := filepath.Abs(config.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve source directory path: %w", err)
		}
		config.SourceDir = sourceDir
		logging.Info("  Source directory (absolute):   %s", sourceDir)

		// A missing source directory is not fatal; the client can open another.
		if err := checkDirectory(sourceDir); err != nil {
			logging.Warn("  Source directory issue: %v", err)
		}
	}

	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:       ENABLED (required)")
	logging.Info("    Authentication: %s", enabledString(config.AuthEnabled))
	logging.Info("    Metrics:        %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func (c *Config) validate() error {
	checks := []struct {
		name  string
		value int
		min   int
	}{
		{"MAX_WIDTH", c.MaxWidth, 1},
		{"MAX_HEIGHT", c.MaxHeight, 1},
		{"CACHE_CAPACITY", c.CacheCapacity, 1},
		{"PREFETCH_WINDOW", c.PrefetchWindow, 1},
		{"PREFETCH_WORKERS", c.PrefetchWorkers, 0},
		{"PREFETCH_QUEUE", c.PrefetchQueue, 1},
	}
	for _, check := range checks {
		if check.value < check.min {
			return fmt.Errorf("%s must be at least %d, got %d", check.name, check.min, check.value)
		}
	}

	switch c.ResizeBackend {
	case "native", "vips":
	default:
		return fmt.Errorf("RESIZE_BACKEND must be native or vips, got %q", c.ResizeBackend)
	}

	return nil
}

func loadDotEnv() bool {
	if _, err := os.Stat(".env"); err != nil {
		return false
	}
	if err := godotenv.Load(); err != nil {
		logging.Warn("Failed to load .env file: %v", err)
		return false
	}
	return true
}

func valueOrNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func workersString(n int) string {
	if n == 0 {
		return "auto"
	}
	return strconv.Itoa(n)
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogResizerInit logs which resize backend ended up active
func LogResizerInit(requested, active, filter string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("RESIZE ENGINE")
	logging.Info("------------------------------------------------------------")
	if requested != active {
		logging.Warn("  Requested backend %q unavailable, using %q", requested, active)
	} else {
		logging.Info("  [OK] Backend: %s", active)
	}
	logging.Info("  Filter: %s", filter)
}

// LogCatalogInit logs the initial directory load
func LogCatalogInit(dir string, items int, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CATALOG")
	logging.Info("------------------------------------------------------------")
	if dir == "" {
		logging.Info("  No SOURCE_DIR set, waiting for a directory to be opened")
		return
	}
	logging.Info("  [OK] Loaded %d images from %s in %v", items, dir, duration)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("  Failed to enumerate routes: %v", err)
		}

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Images:        http://0.0.0.0:%s/{index}", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __          __           ______      ____
   / __ \/ /_  ____  / /_____     / ____/_  __/ / /__  _____
  / /_/ / __ \/ __ \/ __/ __ \   / /   / / / / / / _ \/ ___/
 / ____/ / / / /_/ / /_/ /_/ /  / /___/ /_/ / / /  __/ /
/_/   /_/ /_/\____/\__/\____/   \____/\__,_/_/_/\___/_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func checkDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
