package importer_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/importer"
)

var _ = Describe("CSV parsing", func() {
	It("keys rows by header text in file order", func() {
		csv := "Label,Link\nHome,https://example.com\nDocs,https://example.com/docs\n"

		parsed, err := importer.ParseCSV(strings.NewReader(csv), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Headers).To(Equal([]string{"Label", "Link"}))
		Expect(parsed.Rows).To(HaveLen(2))
		Expect(parsed.Rows[0]["Label"]).To(Equal("Home"))
		Expect(parsed.Rows[1]["Link"]).To(Equal("https://example.com/docs"))
	})

	It("discards rows where every cell is empty", func() {
		csv := "Label,Link\nHome,https://example.com\n,\n  , \nDocs,https://example.com/docs\n"

		parsed, err := importer.ParseCSV(strings.NewReader(csv), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Rows).To(HaveLen(2))
	})

	It("keeps rows where only some cells are empty", func() {
		csv := "Label,Link\nHome,\n"

		parsed, err := importer.ParseCSV(strings.NewReader(csv), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Rows).To(HaveLen(1))
		Expect(parsed.Rows[0]["Link"]).To(Equal(""))
	})

	It("fails when only a header row is present", func() {
		_, err := importer.ParseCSV(strings.NewReader("Label,Link\n"), 0)
		Expect(err).To(HaveOccurred())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeEmptyImportFile))
	})

	It("fails on an empty file", func() {
		_, err := importer.ParseCSV(strings.NewReader(""), 0)
		Expect(err).To(HaveOccurred())
	})

	It("pads short records against the header width", func() {
		csv := "Label,Link,Tag\nHome,https://example.com\n"

		parsed, err := importer.ParseCSV(strings.NewReader(csv), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Rows[0]["Tag"]).To(Equal(""))
	})

	It("enforces the row limit", func() {
		var b strings.Builder
		b.WriteString("Label,Link\n")
		for i := 0; i < 11; i++ {
			b.WriteString("a,b\n")
		}

		_, err := importer.ParseCSV(strings.NewReader(b.String()), 10)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("row import limit"))
	})

	It("handles quoted fields with commas", func() {
		csv := "Label,Link\n\"Home, sweet home\",https://example.com\n"

		parsed, err := importer.ParseCSV(strings.NewReader(csv), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Rows[0]["Label"]).To(Equal("Home, sweet home"))
	})
})

var _ = Describe("ParseFile dispatch", func() {
	It("rejects unsupported extensions", func() {
		_, err := importer.ParseFile(strings.NewReader("x"), "codes.pdf", 0)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported file format"))
	})

	It("routes .csv files to the CSV parser", func() {
		parsed, err := importer.ParseFile(strings.NewReader("Label,Link\nHome,https://example.com\n"), "codes.CSV", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Rows).To(HaveLen(1))
	})
})
