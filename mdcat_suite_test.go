package mdcat_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Test Launcher
func TestMdcat(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "mdcat-go suite")
}
