package application

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	repo "github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/pkg/apperror"
)

func sampleBook(title string) BookInput {
	return BookInput{
		Title:       title,
		AuthorID:    "a1",
		PublisherID: "p1",
		ISBN:        "0099590085",
		Price:       23,
		Stock:       20,
		CategoryIDs: []string{"c1", "c2", "c1"},
	}
}

func cover(name string) *CoverUpload {
	body := "png-bytes"
	return &CoverUpload{Filename: name, ContentType: "image/png", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestCreateBookValidatesAndIndexes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := sampleBook("Sapiens")
	in.Price = -1
	_, err := env.books.Create(ctx, in)
	assert.True(t, apperror.IsValidation(err))

	in = sampleBook("Sapiens")
	in.Stock = -3
	_, err = env.books.Create(ctx, in)
	assert.True(t, apperror.IsValidation(err))

	b, err := env.books.Create(ctx, sampleBook("Sapiens"))
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, b.CategoryIDs, "categories are a set")
	assert.Zero(t, b.Stats.Favorites)
	assert.False(t, b.PublishedDate.IsZero())
	assert.Contains(t, env.index.docs, b.ID)
}

var coverPathRe = regexp.MustCompile(`^[0-9a-f]{24}/[0-9a-f-]{36}\.(png|bin)$`)

func TestCreateWithCoverPrefersPublicURL(t *testing.T) {
	env := newTestEnv(t)
	env.storage.public = true
	ctx := context.Background()

	b, err := env.books.CreateWithCover(ctx, sampleBook("Sapiens"), cover("cover.PNG"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(b.CoverImageURL, "https://public.example/book_cover/"+b.ID+"/"))
	objectPath := strings.TrimPrefix(b.CoverImageURL, "https://public.example/book_cover/")
	assert.Regexp(t, coverPathRe, objectPath)
	assert.Equal(t, []byte("png-bytes"), env.storage.uploads["book_cover/"+objectPath])

	stored, err := env.books.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.CoverImageURL, stored.CoverImageURL)
}

func TestCreateWithCoverFallsBackToPresignedURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.books.CreateWithCover(ctx, sampleBook("Sapiens"), cover("noext"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.CoverImageURL, "https://signed.example/book_cover/"+b.ID+"/"))
	assert.True(t, strings.HasSuffix(b.CoverImageURL, ".bin?sig=1"))
}

func TestCreateWithCoverStoresNothingWhenUploadFails(t *testing.T) {
	env := newTestEnv(t)
	env.storage.presignErr = errors.New("no signer")
	ctx := context.Background()

	_, err := env.books.CreateWithCover(ctx, sampleBook("Sapiens"), cover("c.png"))
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))

	all, err := env.books.List(ctx, repo.BookQuery{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateWithEmptyCoverSkipsUpload(t *testing.T) {
	env := newTestEnv(t)
	b, err := env.books.CreateWithCover(context.Background(), sampleBook("Sapiens"), &CoverUpload{Filename: "c.png", Body: strings.NewReader("")})
	require.NoError(t, err)
	assert.Empty(t, b.CoverImageURL)
	assert.Empty(t, env.storage.uploads)
}

func TestUpdateCover(t *testing.T) {
	env := newTestEnv(t)
	env.storage.public = true
	ctx := context.Background()
	b, err := env.books.Create(ctx, sampleBook("Sapiens"))
	require.NoError(t, err)

	got, err := env.books.UpdateCover(ctx, b.ID, cover("new.jpg"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got.CoverImageURL, ".jpg"))

	_, err = env.books.UpdateCover(ctx, b.ID, nil)
	assert.True(t, apperror.IsValidation(err))
	_, err = env.books.UpdateCover(ctx, "0123456789abcdef01234567", cover("x.png"))
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateBookPreservesStatsAndCover(t *testing.T) {
	env := newTestEnv(t)
	env.storage.public = true
	ctx := context.Background()
	b, err := env.books.CreateWithCover(ctx, sampleBook("Sapiens"), cover("c.png"))
	require.NoError(t, err)
	require.NoError(t, env.favorites.AddFavorite(ctx, "u1", b.ID))

	in := sampleBook("Sapiens: A Brief History")
	in.Price = 30
	got, err := env.books.Update(ctx, b.ID, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Stats.Favorites)
	assert.Equal(t, b.CoverImageURL, got.CoverImageURL)

	stored, err := env.books.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sapiens: A Brief History", stored.Title)
	assert.Equal(t, float64(30), stored.Price)
	assert.Equal(t, int64(1), stored.Stats.Favorites)
	assert.Equal(t, "Sapiens: A Brief History", env.index.docs[b.ID].Title)

	_, err = env.books.Update(ctx, "0123456789abcdef01234567", in)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteBookRemovesFromIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b, err := env.books.Create(ctx, sampleBook("Sapiens"))
	require.NoError(t, err)

	require.NoError(t, env.books.Delete(ctx, b.ID))
	assert.NotContains(t, env.index.docs, b.ID)
	assert.True(t, apperror.IsNotFound(env.books.Delete(ctx, b.ID)))
}

func TestSearchUsesIndexRankingAndFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sapiens, err := env.books.Create(ctx, sampleBook("Sapiens"))
	require.NoError(t, err)
	dune, err := env.books.Create(ctx, sampleBook("Dune"))
	require.NoError(t, err)

	env.index.results = []string{dune.ID, "0123456789abcdef01234567", sapiens.ID}
	got, err := env.books.Search(ctx, "anything")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, dune.ID, got[0].ID)
	assert.Equal(t, sapiens.ID, got[1].ID)

	env.index.fail = true
	got, err = env.books.Search(ctx, "SAPI")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sapiens.ID, got[0].ID)
}

func TestListBooksByNaturalKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := sampleBook("Sapiens")
	b := sampleBook("Dune")
	b.AuthorID = "a2"
	b.CategoryIDs = []string{"c9"}
	for _, in := range []BookInput{a, b} {
		_, err := env.books.Create(ctx, in)
		require.NoError(t, err)
	}

	cases := []struct {
		q    repo.BookQuery
		want []string
	}{
		{repo.BookQuery{}, []string{"Sapiens", "Dune"}},
		{repo.BookQuery{Title: "dun"}, []string{"Dune"}},
		{repo.BookQuery{AuthorID: "a1"}, []string{"Sapiens"}},
		{repo.BookQuery{CategoryID: "c9"}, []string{"Dune"}},
		{repo.BookQuery{PublisherID: "p1"}, []string{"Sapiens", "Dune"}},
		{repo.BookQuery{PublisherID: "nope"}, nil},
	}
	for _, tc := range cases {
		got, err := env.books.List(ctx, tc.q)
		require.NoError(t, err)
		titles := make([]string, 0, len(got))
		for _, bk := range got {
			titles = append(titles, bk.Title)
		}
		assert.ElementsMatch(t, tc.want, titles, "%+v", tc.q)
	}
}

func TestCoverObjectPath(t *testing.T) {
	id := "0123456789abcdef01234567"
	assert.Regexp(t, coverPathRe, CoverObjectPath(id, "x.PNG"))
	assert.Regexp(t, coverPathRe, CoverObjectPath(id, ""))
	assert.Regexp(t, coverPathRe, CoverObjectPath(id, `C:\tmp\name.`))
	assert.NotEqual(t, CoverObjectPath(id, "a.png"), CoverObjectPath(id, "a.png"))
}

// interleavedBooks runs afterRead once the first time a book is loaded
type interleavedBooks struct {
	repo.BookRepository
	afterRead func()
}

func (r *interleavedBooks) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	b, err := r.BookRepository.GetByID(ctx, id)
	if r.afterRead != nil {
		fn := r.afterRead
		r.afterRead = nil
		fn()
	}
	return b, err
}

func TestEditsKeepFavoritesAddedMidUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.storage.public = true
	ctx := context.Background()
	b, err := env.books.Create(ctx, sampleBook("Sapiens"))
	require.NoError(t, err)

	books := &interleavedBooks{BookRepository: env.repos.Books}
	svc := NewBookService(books, env.storage, env.index, BookServiceConfig{CoverBucket: "book_cover"}, quietLogger())

	books.afterRead = func() { require.NoError(t, env.favorites.AddFavorite(ctx, "u1", b.ID)) }
	got, err := svc.Update(ctx, b.ID, sampleBook("Sapiens: A Brief History"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Stats.Favorites)
	assert.Equal(t, int64(1), favorites(t, env, b.ID))

	books.afterRead = func() { require.NoError(t, env.favorites.AddFavorite(ctx, "u2", b.ID)) }
	got, err = svc.UpdateCover(ctx, b.ID, cover("new.png"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Stats.Favorites)

	stored, err := env.books.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sapiens: A Brief History", stored.Title)
	assert.Equal(t, got.CoverImageURL, stored.CoverImageURL)
	assert.Equal(t, int64(2), stored.Stats.Favorites)
}
