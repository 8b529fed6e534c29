package cloth_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCloth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cloth Suite")
}
