package nudyn

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNuDyn(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "NuDyn Suite")
}
