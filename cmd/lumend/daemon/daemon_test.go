package daemon

import (
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/concave-dev/lumen/cmd/lumend/config"
	"github.com/concave-dev/lumen/internal/backend"
	"github.com/concave-dev/lumen/internal/batching"
)

func setGlobal(t *testing.T) {
	t.Helper()
	saved := config.Global
	t.Cleanup(func() { config.Global = saved })

	config.Global = config.Config{
		APIAddr:        "127.0.0.1",
		APIPort:        0,
		Name:           "gilded-lens",
		Backend:        backend.KindPlaceholder,
		Model:          "sdxl-turbo",
		Seed:           9,
		MaxBatchSize:   6,
		InferenceSteps: 12,
		BackendTimeout: 90 * time.Second,
		RedisAddr:      "redis:6379",
		CacheTTL:       time.Minute,
		RateLimit:      3,
		RateBurst:      4,
		MaxPorts:       10,
	}
}

// TestBuildConfigs tests the conversion from daemon flags to component configs
func TestBuildConfigs(t *testing.T) {
	setGlobal(t)

	b := buildBackendConfig()
	if b.Model != "sdxl-turbo" || b.Seed != 9 || b.Timeout != 90*time.Second {
		t.Errorf("buildBackendConfig() = %+v", b)
	}

	bc := buildBatchingConfig()
	if bc.MaxBatchSize != 6 || bc.InferenceSteps != 12 || bc.BackendTimeoutMs != 90000 {
		t.Errorf("buildBatchingConfig() = %+v", bc)
	}
	if err := bc.Validate(); err != nil {
		t.Errorf("buildBatchingConfig().Validate() = %v", err)
	}

	cc := buildCacheConfig()
	if !cc.Enabled() || cc.Addr != "redis:6379" || cc.TTL != time.Minute {
		t.Errorf("buildCacheConfig() = %+v", cc)
	}
}

// TestBuildAPIConfig tests that the write timeout covers a full backend call
func TestBuildAPIConfig(t *testing.T) {
	setGlobal(t)
	config.Global.BackendTimeout = 10 * time.Minute
	config.Global.APIPort = 8000

	batcher := batching.NewBatcher(backend.NewPlaceholderGenerator(), batching.DefaultConfig(), nil)
	apiConfig := buildAPIConfig(batcher, backend.NewPlaceholderRemover(), nil, newRegistry())

	if apiConfig.WriteTimeout < 20*time.Minute {
		t.Errorf("WriteTimeout = %v, want at least 20m", apiConfig.WriteTimeout)
	}
	if apiConfig.InferenceSteps != 12 || apiConfig.Model != "sdxl-turbo" {
		t.Errorf("generation settings = %d %q", apiConfig.InferenceSteps, apiConfig.Model)
	}
	if apiConfig.InstanceName != "gilded-lens" {
		t.Errorf("InstanceName = %q, want gilded-lens", apiConfig.InstanceName)
	}
	if err := apiConfig.Validate(); err != nil {
		t.Errorf("buildAPIConfig().Validate() = %v", err)
	}
}

// TestPreBindAPIListener tests fallback past a busy port when --api was not explicit
func TestPreBindAPIListener(t *testing.T) {
	setGlobal(t)

	busy, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer busy.Close()

	busyPort := busy.Addr().(*net.TCPAddr).Port
	if busyPort >= 65535 {
		t.Skip("no room above the ephemeral port")
	}
	config.Global.APIPort = busyPort

	listener, port, err := preBindAPIListener()
	if err != nil {
		t.Fatalf("preBindAPIListener() error = %v", err)
	}
	defer listener.Close()

	if port <= busyPort {
		t.Errorf("preBindAPIListener() port = %d, want > %d", port, busyPort)
	}

	// An explicit port must not fall back
	config.Global.SetExplicitlySet(config.APIAddrField, true)
	if l, _, err := preBindAPIListener(); err == nil {
		l.Close()
		t.Error("preBindAPIListener() with explicit busy port should fail")
	}
}

// TestRun_ClosesCacheOnStartupError tests that the Redis connection opened
// during startup is released when a later startup step fails
func TestRun_ClosesCacheOnStartupError(t *testing.T) {
	setGlobal(t)

	mr := miniredis.RunT(t)
	config.Global.RedisAddr = mr.Addr()

	free, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	config.Global.APIPort = free.Addr().(*net.TCPAddr).Port
	free.Close()

	// Rate limiting without a burst fails API config validation
	config.Global.RateLimit = 1
	config.Global.RateBurst = 0

	if err := Run(); err == nil {
		t.Fatal("Run() with invalid API config should fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for mr.CurrentConnectionCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := mr.CurrentConnectionCount(); n != 0 {
		t.Errorf("CurrentConnectionCount() = %d after failed Run, want 0", n)
	}
}
