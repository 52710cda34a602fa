package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/models"
	"github.com/dealsphere/dealsphere/internal/repository"
)

type bannerRepoStub struct {
	repository.BannerRepository
	banners    map[string]*models.Banner
	lastFilter repository.BannerListFilter
	created    *models.Banner
	updated    *models.Banner
	deletedID  string
}

func (s *bannerRepoStub) List(filter repository.BannerListFilter) ([]models.Banner, int64, error) {
	s.lastFilter = filter
	return nil, 0, nil
}

func (s *bannerRepoStub) GetByID(id string) (*models.Banner, error) {
	if banner, ok := s.banners[id]; ok {
		return banner, nil
	}
	return nil, nil
}

func (s *bannerRepoStub) Create(banner *models.Banner) error {
	s.created = banner
	return nil
}

func (s *bannerRepoStub) Update(banner *models.Banner) error {
	s.updated = banner
	return nil
}

func (s *bannerRepoStub) Delete(id string) error {
	s.deletedID = id
	return nil
}

func validBannerInput() BannerInput {
	return BannerInput{
		Name:      "home-hero-sale",
		Position:  constants.BannerPositionHomeHero,
		Title:     "Flash Sale",
		Image:     "https://cdn.example.com/banner.png",
		LinkType:  constants.BannerLinkTypeInternal,
		LinkValue: "/deals?deal_type=hot",
	}
}

func TestBannerCreateDefaultsActive(t *testing.T) {
	repo := &bannerRepoStub{}
	svc := NewBannerService(repo)

	banner, err := svc.Create(validBannerInput())
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if !banner.IsActive {
		t.Fatalf("new banner should default to active")
	}
	if repo.created == nil {
		t.Fatalf("create must persist the banner")
	}
}

func TestBannerCreateValidation(t *testing.T) {
	svc := NewBannerService(&bannerRepoStub{})

	missingName := validBannerInput()
	missingName.Name = "  "
	if _, err := svc.Create(missingName); !errors.Is(err, ErrInvalidBanner) {
		t.Fatalf("err = %v, want ErrInvalidBanner for empty name", err)
	}

	missingImage := validBannerInput()
	missingImage.Image = ""
	if _, err := svc.Create(missingImage); !errors.Is(err, ErrInvalidBanner) {
		t.Fatalf("err = %v, want ErrInvalidBanner for empty image", err)
	}

	badLink := validBannerInput()
	badLink.LinkType = "popup"
	if _, err := svc.Create(badLink); !errors.Is(err, ErrInvalidBanner) {
		t.Fatalf("err = %v, want ErrInvalidBanner for unknown link type", err)
	}

	missingTarget := validBannerInput()
	missingTarget.LinkValue = ""
	if _, err := svc.Create(missingTarget); !errors.Is(err, ErrInvalidBanner) {
		t.Fatalf("err = %v, want ErrInvalidBanner when link target is empty", err)
	}
}

func TestBannerCreateRejectsInvertedWindow(t *testing.T) {
	svc := NewBannerService(&bannerRepoStub{})

	start := time.Now()
	end := start.Add(-time.Hour)
	input := validBannerInput()
	input.StartAt = &start
	input.EndAt = &end
	if _, err := svc.Create(input); !errors.Is(err, ErrInvalidBanner) {
		t.Fatalf("err = %v, want ErrInvalidBanner for end before start", err)
	}
}

func TestBannerCreateClearsLinkValueForNone(t *testing.T) {
	repo := &bannerRepoStub{}
	svc := NewBannerService(repo)

	input := validBannerInput()
	input.LinkType = constants.BannerLinkTypeNone
	input.LinkValue = "/ignored"
	banner, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if banner.LinkValue != "" {
		t.Fatalf("link value should be cleared for none link type, got %q", banner.LinkValue)
	}
}

func TestBannerUpdateMissing(t *testing.T) {
	svc := NewBannerService(&bannerRepoStub{})

	if _, err := svc.Update("missing", validBannerInput()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBannerUpdatePreservesActiveWhenUnset(t *testing.T) {
	existing := &models.Banner{
		ID:       1,
		Name:     "old-name",
		Position: constants.BannerPositionHomeHero,
		Image:    "/old.png",
		LinkType: constants.BannerLinkTypeNone,
		IsActive: false,
	}
	repo := &bannerRepoStub{banners: map[string]*models.Banner{"banner-1": existing}}
	svc := NewBannerService(repo)

	banner, err := svc.Update("banner-1", validBannerInput())
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if banner.IsActive {
		t.Fatalf("unset is_active must keep the stored value")
	}
	if banner.Name != "home-hero-sale" {
		t.Fatalf("name = %q, want updated name", banner.Name)
	}
	if repo.updated == nil {
		t.Fatalf("update must persist the banner")
	}
}

func TestBannerDelete(t *testing.T) {
	repo := &bannerRepoStub{banners: map[string]*models.Banner{"banner-1": {ID: 1}}}
	svc := NewBannerService(repo)

	if err := svc.Delete("banner-1"); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if repo.deletedID != "banner-1" {
		t.Fatalf("deleted id = %q", repo.deletedID)
	}
	if err := svc.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListAdminNormalizesFilter(t *testing.T) {
	repo := &bannerRepoStub{}
	svc := NewBannerService(repo)

	active := true
	if _, _, err := svc.ListAdmin(" home_hero ", " sale ", &active, 2, 10); err != nil {
		t.Fatalf("list admin returned error: %v", err)
	}
	filter := repo.lastFilter
	if filter.Position != "home_hero" || filter.Search != "sale" {
		t.Fatalf("filter = %+v, want trimmed position and search", filter)
	}
	if filter.IsActive == nil || !*filter.IsActive {
		t.Fatalf("is_active filter should pass through")
	}
	if filter.OrderBy == "" {
		t.Fatalf("admin list should set a stable order")
	}
}
