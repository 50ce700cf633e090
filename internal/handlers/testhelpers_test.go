package handlers

import (
	"context"
	"time"

	"github.com/mindwell/wellness-api/internal/models"
)

type fakeTrackingRepo struct {
	docs    map[string]*models.TrackingDocument
	err     error
	upserts []*models.TrackingDocument
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{docs: make(map[string]*models.TrackingDocument)}
}

func (f *fakeTrackingRepo) GetByEmail(_ context.Context, email string) (*models.TrackingDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[email], nil
}

func (f *fakeTrackingRepo) Upsert(_ context.Context, doc *models.TrackingDocument) error {
	if f.err != nil {
		return f.err
	}
	f.docs[doc.Email] = doc
	f.upserts = append(f.upserts, doc)
	return nil
}

func (f *fakeTrackingRepo) ListEmails(_ context.Context) ([]string, error) {
	var emails []string
	for email := range f.docs {
		emails = append(emails, email)
	}
	return emails, nil
}

type fakeRecRepo struct {
	recs    map[string]*models.StoredRecommendation
	deletes []string
	err     error
}

func newFakeRecRepo() *fakeRecRepo {
	return &fakeRecRepo{recs: make(map[string]*models.StoredRecommendation)}
}

func (f *fakeRecRepo) GetByEmail(_ context.Context, email string) (*models.StoredRecommendation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recs[email], nil
}

func (f *fakeRecRepo) Upsert(_ context.Context, rec *models.StoredRecommendation) error {
	if f.err != nil {
		return f.err
	}
	f.recs[rec.Email] = rec
	return nil
}

func (f *fakeRecRepo) Delete(_ context.Context, email string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.recs, email)
	f.deletes = append(f.deletes, email)
	return nil
}

func (f *fakeRecRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for email, rec := range f.recs {
		if rec.Expired(now) {
			delete(f.recs, email)
			count++
		}
	}
	return count, nil
}

type fakeChatRepo struct {
	history []*models.ChatEntry
	err     error
}

func (f *fakeChatRepo) Create(_ context.Context, _ *models.ChatEntry) error { return nil }

func (f *fakeChatRepo) RecentByEmail(_ context.Context, _ string, _ int) ([]*models.ChatEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}
