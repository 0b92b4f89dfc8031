package expense_test

import (
	"github.com/frahmantamala/finance-tracker/internal/expense"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseAmountToCents", func() {
	DescribeTable("valid amounts",
		func(input string, want int64) {
			cents, err := expense.ParseAmountToCents(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(cents).To(Equal(want))
		},
		Entry("integer", "42", int64(4200)),
		Entry("two decimals", "42.50", int64(4250)),
		Entry("one decimal", "42.5", int64(4250)),
		Entry("comma separator", "42,50", int64(4250)),
		Entry("leading zero cents", "0.05", int64(5)),
		Entry("rounds half up", "1.005", int64(101)),
		Entry("rounds down below half", "1.004", int64(100)),
		Entry("surrounding whitespace", " 12.00 ", int64(1200)),
	)

	DescribeTable("invalid amounts",
		func(input string) {
			_, err := expense.ParseAmountToCents(input)
			Expect(err).To(HaveOccurred())
		},
		Entry("empty", ""),
		Entry("not a number", "abc"),
		Entry("negative", "-5.00"),
		Entry("explicit plus sign", "+5.00"),
		Entry("zero", "0"),
		Entry("multiple separators", "1.2.3"),
	)
})

var _ = Describe("FormatCents", func() {
	It("renders two decimal places", func() {
		Expect(expense.FormatCents(4250)).To(Equal("42.50"))
		Expect(expense.FormatCents(5)).To(Equal("0.05"))
		Expect(expense.FormatCents(100)).To(Equal("1.00"))
	})
})
