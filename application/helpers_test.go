package application

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KOMKZ/go-yogan-chat/di"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
app:
  name: chat-test
  version: v0.0.1
http:
  addr: 127.0.0.1:0
  mode: test
  shutdown_timeout: 2s
logger:
  level: debug
  enable_console: false
  enable_file: false
database:
  driver: sqlite
  dsn: {{dir}}/chat.db
  auto_migrate: true
cache:
  store: memory
jwt:
  secret: test-secret
auth:
  bcrypt_cost: 4
event:
  set_all_sync: true
telemetry:
  tracing:
    enabled: false
`

// writeConfig writes config.yaml plus optional extra files (name -> content) into a temp dir
func writeConfig(t *testing.T, content string, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	content = strings.ReplaceAll(content, "{{dir}}", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	for i := 0; i+1 < len(extra); i += 2 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, extra[i]), []byte(extra[i+1]), 0o644))
	}
	return dir
}

func newTestApp(t *testing.T, content string, extra ...string) *Application {
	t.Helper()
	app, err := New(di.ConfigOptions{ConfigPath: writeConfig(t, content, extra...), Env: "test", EnvPrefix: "CHATTEST"})
	require.NoError(t, err)
	return app
}
