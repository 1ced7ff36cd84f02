// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

//go:build integration

package postgres_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

func TestPostgresRepositories(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Economy Postgres Suite")
}
