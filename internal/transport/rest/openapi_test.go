package rest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Suite")
}

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("validates against the OpenAPI 3 schema", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	DescribeTable("documents every endpoint",
		func(method, path string) {
			item := doc.Paths.Find(path)
			Expect(item).NotTo(BeNil(), "path %s missing", path)
			Expect(item.GetOperation(method)).NotTo(BeNil(), "%s %s missing", method, path)
		},
		Entry("register", http.MethodPost, "/api/register/"),
		Entry("token", http.MethodPost, "/api/token/"),
		Entry("token refresh", http.MethodPost, "/api/token/refresh/"),
		Entry("password reset request", http.MethodPost, "/api/auth/password_reset/"),
		Entry("password reset confirm", http.MethodPost, "/api/auth/reset/{uid}/{token}/"),
		Entry("profile", http.MethodGet, "/api/profile/"),
		Entry("list categories", http.MethodGet, "/api/categories/"),
		Entry("create category", http.MethodPost, "/api/categories/"),
		Entry("get category", http.MethodGet, "/api/categories/{id}/"),
		Entry("update category", http.MethodPut, "/api/categories/{id}/"),
		Entry("patch category", http.MethodPatch, "/api/categories/{id}/"),
		Entry("delete category", http.MethodDelete, "/api/categories/{id}/"),
		Entry("list expenses", http.MethodGet, "/api/expenses/"),
		Entry("create expense", http.MethodPost, "/api/expenses/"),
		Entry("get expense", http.MethodGet, "/api/expenses/{id}/"),
		Entry("update expense", http.MethodPut, "/api/expenses/{id}/"),
		Entry("patch expense", http.MethodPatch, "/api/expenses/{id}/"),
		Entry("delete expense", http.MethodDelete, "/api/expenses/{id}/"),
		Entry("readiness", http.MethodGet, "/health"),
		Entry("liveness", http.MethodGet, "/ping"),
	)

	It("describes expense uploads as multipart", func() {
		op := doc.Paths.Find("/api/expenses/").GetOperation(http.MethodPost)
		Expect(op.RequestBody).NotTo(BeNil())
		content := op.RequestBody.Value.Content
		Expect(content).To(HaveKey("multipart/form-data"))
		Expect(content).To(HaveKey("application/json"))
	})
})
