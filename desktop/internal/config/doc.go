// Package config loads and watches the desktop bridge configuration file
// (config.yaml).
//
// Top-level types:
//   - Config{Agent, Bridge, Log}: full config tree parsed from YAML
//   - AgentConfig: base_url, timeout, health_interval, healthy_status
//   - BridgeConfig: listen, grpc_listen, autostart_hidden, allowed_origins
//   - LogConfig: level, format
//
// Load(path) reads the YAML file, applies defaults (agent at
// http://127.0.0.1:8741, 30s timeout, 10s health interval, bridge on
// 127.0.0.1:8742), applies the SLOVO_LOG override, then validates. Every
// address must be loopback; the agent channel is never exposed off-host.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. Only the log level is applied at
// runtime; agent and bridge settings take effect on restart.
package config
