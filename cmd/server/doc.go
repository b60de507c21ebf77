// Package main is the entry point for the bridgefs hub server.
//
// The hub mounts heterogeneous backends (local directories, sandboxed
// app storage, remote document services, chat endpoints) behind one
// virtual filesystem contract and serves it over HTTP.
//
// Configuration:
//   - Environment variables (12-factor)
//   - Optional YAML file via -config (overrides env vars)
//   - Defaults for development
//
// Usage:
//
//	./server
//	./server -config /etc/bridgefs/config.yaml
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown, disposing every backend
package main
