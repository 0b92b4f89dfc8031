package receipt_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/finance-tracker/internal/receipt"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
)

var _ = Describe("MediaStore", func() {
	var (
		fs    afero.Fs
		store *receipt.MediaStore
	)

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		store = receipt.NewMediaStore(fs)
	})

	Describe("Save", func() {
		It("writes under receipts/ with a .jpg name", func() {
			rel, err := store.Save([]byte("jpeg bytes"))
			Expect(err).NotTo(HaveOccurred())
			Expect(rel).To(HavePrefix("receipts/"))
			Expect(rel).To(HaveSuffix(".jpg"))

			data, err := afero.ReadFile(fs, "/"+rel)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("jpeg bytes")))
		})

		It("gives every file a distinct name", func() {
			a, err := store.Save([]byte("one"))
			Expect(err).NotTo(HaveOccurred())
			b, err := store.Save([]byte("two"))
			Expect(err).NotTo(HaveOccurred())
			Expect(a).NotTo(Equal(b))
		})
	})

	Describe("Remove", func() {
		It("deletes a stored file", func() {
			rel, err := store.Save([]byte("jpeg bytes"))
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Remove(rel)).To(Succeed())
			_, err = afero.ReadFile(fs, "/"+rel)
			Expect(err).To(HaveOccurred())
		})

		It("ignores files that are already gone", func() {
			Expect(store.Remove("receipts/missing.jpg")).To(Succeed())
		})
	})

	Describe("HTTPFS", func() {
		It("serves stored files over HTTP", func() {
			rel, err := store.Save([]byte("jpeg bytes"))
			Expect(err).NotTo(HaveOccurred())

			srv := httptest.NewServer(http.StripPrefix("/media/", http.FileServer(store.HTTPFS())))
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/media/" + rel)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})
})
