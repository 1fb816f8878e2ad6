// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

//go:build tools
// +build tools

// Package main pins tool dependencies to go.mod. The ginkgo CLI runs the
// tagged integration suite under internal/auth/postgres.
// See https://go.dev/wiki/Modules#how-can-i-track-tool-dependencies-for-a-module
package main

import (
	_ "github.com/onsi/ginkgo/v2/ginkgo"
)
