package category_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/finance-tracker/internal/category"
	categoryDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/category"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCategoryService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Service Suite")
}

// MockRepository implements category.RepositoryAPI for testing
type MockRepository struct {
	categories map[int64]*categoryDatamodel.Category
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		categories: make(map[int64]*categoryDatamodel.Category),
		nextID:     1,
	}
}

func (m *MockRepository) GetAllByUser(userID int64) ([]*categoryDatamodel.Category, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*categoryDatamodel.Category
	for _, c := range m.categories {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *MockRepository) GetByIDForUser(id, userID int64) (*categoryDatamodel.Category, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	return c, nil
}

func (m *MockRepository) Create(c *categoryDatamodel.Category) error {
	if m.shouldFail {
		return m.failError
	}
	c.ID = m.nextID
	m.nextID++
	m.categories[c.ID] = c
	return nil
}

func (m *MockRepository) Update(c *categoryDatamodel.Category) error {
	if m.shouldFail {
		return m.failError
	}
	m.categories[c.ID] = c
	return nil
}

func (m *MockRepository) Delete(id, userID int64) error {
	if m.shouldFail {
		return m.failError
	}
	for cid, c := range m.categories {
		if c.ParentID != nil && *c.ParentID == id && c.UserID == userID {
			delete(m.categories, cid)
		}
	}
	delete(m.categories, id)
	return nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

var _ = Describe("Category Service", func() {
	var (
		mockRepo *MockRepository
		service  *category.Service
		logger   *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = category.NewService(mockRepo, logger)
	})

	addCategory := func(name string, userID int64, parentID *int64) *categoryDatamodel.Category {
		c := &categoryDatamodel.Category{
			Name:     name,
			Icon:     category.DefaultIcon,
			Type:     category.TypeExpense,
			ParentID: parentID,
			UserID:   userID,
		}
		Expect(mockRepo.Create(c)).To(Succeed())
		return c
	}

	Describe("Create", func() {
		It("applies defaults for icon and type", func() {
			created, err := service.Create(1, category.UpsertDTO{Name: "Food"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Icon).To(Equal(category.DefaultIcon))
			Expect(created.Type).To(Equal(category.TypeExpense))
		})

		It("rejects an empty name", func() {
			_, err := service.Create(1, category.UpsertDTO{})
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unknown type", func() {
			_, err := service.Create(1, category.UpsertDTO{Name: "Food", Type: "savings"})
			Expect(err).To(HaveOccurred())
		})

		It("accepts a parent the user owns", func() {
			parent := addCategory("Food", 1, nil)
			created, err := service.Create(1, category.UpsertDTO{Name: "Lunch", ParentID: &parent.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(*created.ParentID).To(Equal(parent.ID))
		})

		It("treats another user's parent like a missing one", func() {
			theirs := addCategory("Food", 2, nil)
			_, err := service.Create(1, category.UpsertDTO{Name: "Lunch", ParentID: &theirs.ID})
			Expect(err).To(MatchError(category.ErrInvalidParent))

			missing := theirs.ID + 100
			_, err2 := service.Create(1, category.UpsertDTO{Name: "Lunch", ParentID: &missing})
			Expect(err2).To(MatchError(category.ErrInvalidParent))
			Expect(err.Error()).To(Equal(err2.Error()))
		})
	})

	Describe("Patch", func() {
		It("clears the parent when the client sends null", func() {
			parent := addCategory("Food", 1, nil)
			child := addCategory("Lunch", 1, &parent.ID)

			patched, err := service.Patch(child.ID, 1, category.PatchDTO{HasParent: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(patched.ParentID).To(BeNil())
		})

		It("keeps the parent when the field is omitted", func() {
			parent := addCategory("Food", 1, nil)
			child := addCategory("Lunch", 1, &parent.ID)

			name := "Brunch"
			patched, err := service.Patch(child.ID, 1, category.PatchDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(patched.Name).To(Equal("Brunch"))
			Expect(*patched.ParentID).To(Equal(parent.ID))
		})

		It("refuses a category as its own parent", func() {
			c := addCategory("Food", 1, nil)
			_, err := service.Patch(c.ID, 1, category.PatchDTO{HasParent: true, ParentID: &c.ID})
			Expect(err).To(MatchError(category.ErrInvalidParent))
		})
	})

	Describe("Get", func() {
		It("hides other users' categories", func() {
			theirs := addCategory("Food", 2, nil)
			_, err := service.Get(theirs.ID, 1)
			Expect(err).To(MatchError(category.ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("returns not found for another user's category", func() {
			theirs := addCategory("Food", 2, nil)
			Expect(service.Delete(theirs.ID, 1)).To(MatchError(category.ErrNotFound))
		})
	})

	Describe("IsOwnedBy", func() {
		It("distinguishes owned from foreign categories", func() {
			mine := addCategory("Food", 1, nil)
			theirs := addCategory("Rent", 2, nil)

			owned, err := service.IsOwnedBy(mine.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(owned).To(BeTrue())

			owned, err = service.IsOwnedBy(theirs.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(owned).To(BeFalse())
		})
	})

	Describe("SeedDefaults", func() {
		It("creates the full starter taxonomy", func() {
			Expect(service.SeedDefaults(1)).To(Succeed())

			cats, err := service.List(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(cats).To(HaveLen(18))

			var roots, children int
			incomeNames := map[string]bool{}
			for _, c := range cats {
				if c.IsRoot() {
					roots++
				} else {
					children++
				}
				if c.Type == category.TypeIncome {
					incomeNames[c.Name] = true
				}
			}
			Expect(roots).To(Equal(5))
			Expect(children).To(Equal(13))
			Expect(incomeNames).To(HaveKey("Income"))
			Expect(incomeNames).To(HaveKey("Salary"))
			Expect(incomeNames).To(HaveKey("Bonus"))
		})

		It("links children to their seeded parent", func() {
			Expect(service.SeedDefaults(1)).To(Succeed())

			cats, err := service.List(1)
			Expect(err).NotTo(HaveOccurred())

			byID := map[int64]*category.Category{}
			for _, c := range cats {
				byID[c.ID] = c
			}
			for _, c := range cats {
				if c.ParentID != nil {
					parent, ok := byID[*c.ParentID]
					Expect(ok).To(BeTrue())
					Expect(parent.IsRoot()).To(BeTrue())
				}
			}
		})

		It("seeds per user without cross-talk", func() {
			Expect(service.SeedDefaults(1)).To(Succeed())
			Expect(service.SeedDefaults(2)).To(Succeed())

			cats, err := service.List(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(cats).To(HaveLen(18))
		})

		It("propagates repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("database error"))
			Expect(service.SeedDefaults(1)).To(HaveOccurred())
		})
	})
})
