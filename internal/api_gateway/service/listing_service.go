package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garage-sale-marketplace/internal/domain/listing"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/garage-sale-marketplace/internal/domain/user"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/email"
)

// searchLimit caps how many active listings are loaded before filtering
const searchLimit = 500

// ApprovalNotifier tells a listing owner their listing went live
type ApprovalNotifier interface {
	SendListingApproved(ctx context.Context, to email.Recipient, data email.ListingApproved) error
}

// ListingServiceImpl implements the ListingService interface
type ListingServiceImpl struct {
	listings listing.Repository
	saved    listing.SavedRepository
	users    user.Repository
	geo      GeoService
	notifier ApprovalNotifier
	logger   *slog.Logger
}

func NewListingService(
	logger *slog.Logger,
	listings listing.Repository,
	saved listing.SavedRepository,
	users user.Repository,
	geo GeoService,
	notifier ApprovalNotifier,
) ListingService {
	return &ListingServiceImpl{
		listings: listings,
		saved:    saved,
		users:    users,
		geo:      geo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *ListingServiceImpl) Create(ctx context.Context, in CreateListingInput) (*listing.Listing, error) {
	if in.OwnerID == "" {
		return nil, fmt.Errorf("%w: missing caller identity", shared.ErrUnauthorized)
	}

	start, err := parseDate(in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date: %v", shared.ErrInvalidInput, err)
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date: %v", shared.ErrInvalidInput, err)
	}

	l, err := listing.NewListing(in.OwnerID, in.Title, in.Description, in.SaleType, in.Address, in.Postcode, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if in.Latitude != nil && in.Longitude != nil {
		l.Latitude, l.Longitude = *in.Latitude, *in.Longitude
	} else {
		loc := s.geo.Coordinates(ctx, l.GeocodeQuery())
		l.Latitude, l.Longitude = loc.Latitude, loc.Longitude
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	logger.FromContext(ctx, s.logger).Info("Listing created", "listing_id", l.ID, "owner_id", l.OwnerID)
	return l, nil
}

func (s *ListingServiceImpl) Search(ctx context.Context, userID string, criteria *listing.FilterCriteria) ([]*ListingView, error) {
	active, err := s.listings.ListByStatus(ctx, listing.StatusActive, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}

	var saved []listing.SavedListing
	if userID != "" {
		saved, err = s.saved.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load saved listings: %w", err)
		}
	}

	matches := listing.FilterListings(active, criteria)
	views := make([]*ListingView, 0, len(matches))
	for _, l := range matches {
		views = append(views, &ListingView{Listing: l, Saved: listing.IsListingSaved(l.ID, saved)})
	}
	return views, nil
}

func (s *ListingServiceImpl) Clusters(ctx context.Context, userID string, criteria *listing.FilterCriteria) ([]*ListingCluster, error) {
	views, err := s.Search(ctx, userID, criteria)
	if err != nil {
		return nil, err
	}

	byListing := make(map[*listing.Listing]*ListingView, len(views))
	listings := make([]*listing.Listing, 0, len(views))
	for _, v := range views {
		byListing[v.Listing] = v
		listings = append(listings, v.Listing)
	}

	groups := listing.GroupListingsByProximity(listings)
	clusters := make([]*ListingCluster, 0, len(groups.Keys))
	for _, key := range groups.Keys {
		members := groups.Groups[key]
		cluster := &ListingCluster{Key: key, Count: len(members), Listings: make([]*ListingView, 0, len(members))}
		for _, l := range members {
			cluster.Listings = append(cluster.Listings, byListing[l])
		}
		clusters = append(clusters, cluster)
	}
	return clusters, nil
}

func (s *ListingServiceImpl) Save(ctx context.Context, userID, listingID string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing caller identity", shared.ErrUnauthorized)
	}
	if strings.TrimSpace(listingID) == "" {
		return fmt.Errorf("%w: listingId is required", shared.ErrInvalidInput)
	}
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return err
	}
	if err := s.saved.Save(ctx, userID, listingID); err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// Approve activates a paid listing. The owner email is sent inline and its failure
// is reported in the result, never as an error.
func (s *ListingServiceImpl) Approve(ctx context.Context, adminID, listingID string) (*ApprovalResult, error) {
	log := logger.FromContext(ctx, s.logger).With("admin_id", adminID, "listing_id", listingID)

	if adminID == "" {
		return nil, fmt.Errorf("%w: missing caller identity", shared.ErrUnauthorized)
	}
	caller, err := s.users.GetByID(ctx, adminID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up role: %w", err)
	}
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", shared.ErrForbidden)
	}
	if strings.TrimSpace(listingID) == "" {
		return nil, fmt.Errorf("%w: listingId is required", shared.ErrInvalidInput)
	}

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.PaymentStatus != listing.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: listing fee has not been paid", shared.ErrInvalidInput)
	}
	if err := s.listings.UpdateStatus(ctx, listingID, listing.StatusActive, listing.PaymentStatusPaid); err != nil {
		return nil, fmt.Errorf("failed to approve listing: %w", err)
	}
	l.Status = listing.StatusActive
	log.Info("Listing approved")

	result := &ApprovalResult{Listing: l}
	if err := s.notifyOwner(ctx, l); err != nil {
		log.Warn("Approval email not sent", "owner_id", l.OwnerID, "error", err)
		result.EmailError = err.Error()
		return result, nil
	}
	result.EmailSent = true
	return result, nil
}

func (s *ListingServiceImpl) notifyOwner(ctx context.Context, l *listing.Listing) error {
	owner, err := s.users.GetByID(ctx, l.OwnerID)
	if err != nil {
		return fmt.Errorf("owner profile unavailable: %w", err)
	}
	if owner.Email == "" {
		return errors.New("owner has no email address")
	}
	return s.notifier.SendListingApproved(ctx,
		email.Recipient{Email: owner.Email, Name: owner.DisplayName},
		email.ListingApproved{OwnerName: owner.DisplayName, ListingID: l.ID, Title: l.Title},
	)
}

// parseDate accepts RFC 3339 timestamps and plain dates
func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, *value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", *value)
}
