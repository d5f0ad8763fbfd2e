package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/blobstore"
)

// fakeClock hands out strictly increasing times so generated blob paths differ
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type memUserRepo struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*models.User
	profiles map[int64]*models.Profile
	calls    int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*models.User{}, profiles: map[int64]*models.Profile{}}
}

func (r *memUserRepo) add(email, name string, branch catalog.Branch, isAdmin bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.users[r.nextID] = &models.User{ID: r.nextID, Email: email, EmailVerified: true}
	r.profiles[r.nextID] = &models.Profile{UserID: r.nextID, Name: name, Branch: branch, IsAdmin: isAdmin}
	return r.nextID
}

func (r *memUserRepo) CreateAccount(_ context.Context, user *models.User, profile *models.Profile) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.users {
		if u.Email == email {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	r.nextID++
	u := *user
	u.ID, u.Email = r.nextID, email
	p := *profile
	p.UserID = r.nextID
	r.users[u.ID] = &u
	r.profiles[u.ID] = &p
	return u.ID, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepo) GetProfile(_ context.Context, userID int64) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memUserRepo) UpdateProfileName(_ context.Context, userID int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	p.Name = name
	return nil
}

func (r *memUserRepo) SetAdmin(_ context.Context, userID int64, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	p.IsAdmin = isAdmin
	return nil
}

func (r *memUserRepo) MarkEmailVerified(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.EmailVerified = true
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

type memToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*memToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]*memToken{}}
}

func (r *memTokenRepo) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &memToken{userID: userID, expiry: expiry}
	return nil
}

func (r *memTokenRepo) GetTokenByValue(_ context.Context, token string) (int64, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	switch {
	case !ok:
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	case t.expiry.Before(time.Now()):
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return t.userID, t.expiry, nil
}

func (r *memTokenRepo) RevokeToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (r *memTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (r *memTokenRepo) CleanupExpiredTokens(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if t.expiry.Before(time.Now()) || t.revoked {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

type memVerificationRepo struct {
	mu     sync.Mutex
	tokens map[string]*memToken
}

func newMemVerificationRepo() *memVerificationRepo {
	return &memVerificationRepo{tokens: map[string]*memToken{}}
}

func (r *memVerificationRepo) CreateToken(_ context.Context, userID int64, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &memToken{userID: userID, expiry: expiry}
	return nil
}

func (r *memVerificationRepo) GetTokenInfo(_ context.Context, token string) (int64, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return 0, time.Time{}, apperrors.ErrInvalidEmailToken
	}
	return t.userID, t.expiry, nil
}

func (r *memVerificationRepo) DeleteToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *memVerificationRepo) DeleteExpiredTokens(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if t.expiry.Before(time.Now()) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func (r *memVerificationRepo) DeleteTokensByUserID(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.userID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

func (r *memVerificationRepo) tokenFor(userID int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.userID == userID {
			return k
		}
	}
	return ""
}

type memMaterialRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*models.Material
	seq       int
	calls     int
	updateErr error
}

func newMemMaterialRepo() *memMaterialRepo {
	return &memMaterialRepo{items: map[uuid.UUID]*models.Material{}}
}

func (r *memMaterialRepo) Create(_ context.Context, m *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.seq++
	m.CreatedAt = time.Unix(int64(r.seq), 0)
	m.UpdatedAt = m.CreatedAt
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *memMaterialRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	m, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrMaterialNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMaterialRepo) sorted() []*models.Material {
	out := make([]*models.Material, 0, len(r.items))
	for _, m := range r.items {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memMaterialRepo) List(_ context.Context, f models.ContentFilter) ([]*models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	out := []*models.Material{}
	for _, m := range r.sorted() {
		if m.Branch != f.Branch || m.Semester != f.Semester {
			continue
		}
		if f.SubjectID != "" && m.SubjectID != f.SubjectID {
			continue
		}
		if f.ModuleID != "" && m.ModuleID != f.ModuleID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memMaterialRepo) ListPage(_ context.Context, offset uint64, limit int) ([]*models.Material, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return []*models.Material{}, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *memMaterialRepo) Update(_ context.Context, m *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.items[m.ID]; !ok {
		return apperrors.ErrMaterialNotFound
	}
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *memMaterialRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if _, ok := r.items[id]; !ok {
		return apperrors.ErrMaterialNotFound
	}
	delete(r.items, id)
	return nil
}

type memReferenceRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.ReferenceBook
	seq   int
	calls int
}

func newMemReferenceRepo() *memReferenceRepo {
	return &memReferenceRepo{items: map[uuid.UUID]*models.ReferenceBook{}}
}

func (r *memReferenceRepo) Create(_ context.Context, b *models.ReferenceBook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.seq++
	b.CreatedAt = time.Unix(int64(r.seq), 0)
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.items[b.ID] = &cp
	return nil
}

func (r *memReferenceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ReferenceBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	b, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrReferenceNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memReferenceRepo) sorted() []*models.ReferenceBook {
	out := make([]*models.ReferenceBook, 0, len(r.items))
	for _, b := range r.items {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memReferenceRepo) List(_ context.Context, f models.ContentFilter) ([]*models.ReferenceBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	out := []*models.ReferenceBook{}
	for _, b := range r.sorted() {
		if b.Branch == f.Branch && b.Semester == f.Semester && (f.SubjectID == "" || b.SubjectID == f.SubjectID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memReferenceRepo) ListPage(_ context.Context, offset uint64, limit int) ([]*models.ReferenceBook, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return []*models.ReferenceBook{}, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *memReferenceRepo) Update(_ context.Context, b *models.ReferenceBook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if _, ok := r.items[b.ID]; !ok {
		return apperrors.ErrReferenceNotFound
	}
	cp := *b
	r.items[b.ID] = &cp
	return nil
}

func (r *memReferenceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if _, ok := r.items[id]; !ok {
		return apperrors.ErrReferenceNotFound
	}
	delete(r.items, id)
	return nil
}

type memBlobOpRepo struct {
	mu     sync.Mutex
	nextID int64
	ops    map[int64]*models.BlobOperation
}

func newMemBlobOpRepo() *memBlobOpRepo {
	return &memBlobOpRepo{ops: map[int64]*models.BlobOperation{}}
}

func (r *memBlobOpRepo) Create(_ context.Context, op *models.BlobOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	op.ID = r.nextID
	if op.Status == "" {
		op.Status = models.BlobOpPending
	}
	op.CreatedAt = time.Now().Add(-time.Hour)
	cp := *op
	r.ops[op.ID] = &cp
	return nil
}

func (r *memBlobOpRepo) UpdateStatus(_ context.Context, id int64, status models.BlobOpStatus, lastError string, countAttempt bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	if !ok {
		return apperrors.ErrBlobOpNotFound
	}
	op.Status = status
	if lastError != "" {
		op.LastError = &lastError
	} else {
		op.LastError = nil
	}
	if countAttempt {
		op.Attempts++
	}
	return nil
}

func (r *memBlobOpRepo) ListPending(_ context.Context, olderThan time.Time, limit int) ([]*models.BlobOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.BlobOperation{}
	for id := int64(1); id <= r.nextID; id++ {
		op, ok := r.ops[id]
		if !ok || op.CreatedAt.After(olderThan) {
			continue
		}
		if op.Status == models.BlobOpPending || op.Status == models.BlobOpFailed {
			cp := *op
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Attempts < out[j].Attempts })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memBlobOpRepo) List(_ context.Context, status models.BlobOpStatus, offset uint64, limit int) ([]*models.BlobOperation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []*models.BlobOperation{}
	for id := r.nextID; id >= 1; id-- {
		op, ok := r.ops[id]
		if ok && (status == "" || op.Status == status) {
			cp := *op
			all = append(all, &cp)
		}
	}
	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return []*models.BlobOperation{}, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *memBlobOpRepo) get(id int64) *models.BlobOperation {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.ops[id]
	return &cp
}

// flakyTransfer fails uploads while uploadErr is set
type flakyTransfer struct {
	BlobTransfer
	uploadErr error
}

func (f *flakyTransfer) Upload(ctx context.Context, bucket, path string, r io.Reader, size int64, contentType string) error {
	if f.uploadErr != nil {
		return apperrors.NewUploadError(f.uploadErr)
	}
	return f.BlobTransfer.Upload(ctx, bucket, path, r, size, contentType)
}

// contentFixture wires the content services over in-memory repositories and
// a local blob backend rooted in a temp dir.
type contentFixture struct {
	users      *memUserRepo
	materials  *memMaterialRepo
	references *memReferenceRepo
	ops        *memBlobOpRepo
	transfer   *flakyTransfer
	clock      *fakeClock

	adminID   int64
	studentID int64

	materialSvc  MaterialService
	referenceSvc ReferenceService
	viewSvc      ViewService
	adminSvc     AdminService
	reconciler   *Reconciler
}

const (
	testMaterialBucket  = "materials"
	testReferenceBucket = "references"
)

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()

	backend, err := blobstore.NewLocalBackend(t.TempDir(), "http://localhost:8080", "test-secret")
	require.NoError(t, err)
	transfer := blobstore.NewTransfer(backend, blobstore.Options{SignedURLTTL: time.Hour, CacheSize: 64}, zerolog.Nop())
	require.NoError(t, transfer.EnsureBuckets(context.Background(), testMaterialBucket, testReferenceBucket))

	f := &contentFixture{
		users:      newMemUserRepo(),
		materials:  newMemMaterialRepo(),
		references: newMemReferenceRepo(),
		ops:        newMemBlobOpRepo(),
		transfer:   &flakyTransfer{BlobTransfer: transfer},
		clock:      newFakeClock(),
	}
	f.adminID = f.users.add("admin@nhance.edu", "Admin", catalog.BranchCSE, true)
	f.studentID = f.users.add("student@nhance.edu", "Student", catalog.BranchCSE, false)

	authz := auth.NewAuthorizationService(f.users)
	uploads := NewUploadValidator(DefaultMaxUploadSize)

	f.materialSvc = NewMaterialService(f.materials, f.ops, f.transfer, authz, uploads, testMaterialBucket, zerolog.Nop())
	f.materialSvc.(*materialServiceImpl).now = f.clock.Now
	f.referenceSvc = NewReferenceService(f.references, f.ops, f.transfer, authz, uploads, testReferenceBucket, zerolog.Nop())
	f.referenceSvc.(*referenceServiceImpl).now = f.clock.Now
	f.viewSvc = NewViewService(f.materials, f.references)
	f.reconciler = NewReconciler(f.ops, f.materials, f.references, f.transfer, ReconcilerOptions{Grace: time.Minute}, zerolog.Nop())
	f.adminSvc = NewAdminService(f.materials, f.references, f.ops, f.reconciler, authz)
	return f
}

func pdfUpload(name, body string) *FileUpload {
	content := "%PDF-1.4\n" + body
	return &FileUpload{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: MimePDF,
		Reader:      bytes.NewReader([]byte(content)),
	}
}

func (f *contentFixture) blobExists(t *testing.T, bucket, path string) bool {
	t.Helper()
	ok, err := f.transfer.Exists(context.Background(), bucket, path)
	require.NoError(t, err)
	return ok
}
