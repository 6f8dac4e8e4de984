// Copyright (c) 2024 Neomantra Corp

package streamwriter_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStreamwriter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "streamwriter suite")
}
