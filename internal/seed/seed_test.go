package seed

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"waveline/internal/models"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.RefreshToken{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.Subscription{},
		&models.Notification{},
	))
	return db
}

func TestFactory_CreateUser(t *testing.T) {
	db := setupSeedDB(t)

	t.Run("PersistsUserWithProfile", func(t *testing.T) {
		f := NewFactory(db, SeedOptions{})
		user, err := f.CreateUser()
		require.NoError(t, err)
		require.NotZero(t, user.ID)

		var stored models.User
		require.NoError(t, db.Preload("Profile").First(&stored, user.ID).Error)
		assert.True(t, stored.IsActive)
		assert.True(t, stored.IsVerified)
		require.NotNil(t, stored.Profile)
		assert.NotEmpty(t, stored.Profile.Bio)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")))
	})

	t.Run("SkipBcryptStoresPlaintext", func(t *testing.T) {
		f := NewFactory(db, SeedOptions{SkipBcrypt: true})
		user, err := f.CreateUser()
		require.NoError(t, err)
		assert.Equal(t, "password123", user.Password)
	})

	t.Run("OverridesApply", func(t *testing.T) {
		f := NewFactory(db, SeedOptions{})
		user, err := f.CreateUser(func(u *models.User) {
			u.Username = "override"
			u.Email = "override@example.com"
		})
		require.NoError(t, err)
		assert.Equal(t, "override", user.Username)
	})
}

func TestFactory_DryRun(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db, SeedOptions{DryRun: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	post, err := f.CreatePost(user, "golang")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.NotEqual(t, user.ID, post.ID)

	require.NoError(t, f.CreateLike(user, post))

	var users, posts, likes int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.Zero(t, users)
	assert.Zero(t, posts)
	assert.Zero(t, likes)
}

func TestFactory_CountersMatchRows(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	author, err := f.CreateUser()
	require.NoError(t, err)
	post, err := f.CreatePost(author, "golang")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		fan, err := f.CreateUser()
		require.NoError(t, err)
		require.NoError(t, f.CreateLike(fan, post))
	}
	comment, err := f.CreateComment(author, post)
	require.NoError(t, err)
	require.NoError(t, f.CreateCommentLike(author, comment))

	var storedPost models.Post
	require.NoError(t, db.First(&storedPost, post.ID).Error)
	assert.Equal(t, 3, storedPost.LikeCount)
	assert.Equal(t, 1, storedPost.CommentCount)

	var likeRows int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeRows).Error)
	assert.Equal(t, int64(storedPost.LikeCount), likeRows)

	var storedComment models.Comment
	require.NoError(t, db.First(&storedComment, comment.ID).Error)
	assert.Equal(t, 1, storedComment.LikeCount)
}

func TestFactory_SelfFollowRejected(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.Error(t, f.CreateSubscription(user, user))
}

func TestSeeder_SeedSocialMesh(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db, SeedOptions{SkipBcrypt: true})

	users, err := s.SeedSocialMesh(8)
	require.NoError(t, err)
	assert.Len(t, users, 8)

	for _, name := range []string{"ada", "linus", "test"} {
		var u models.User
		require.NoError(t, db.Where("username = ?", name).First(&u).Error, "missing base user %s", name)
	}

	var selfFollows int64
	require.NoError(t, db.Model(&models.Subscription{}).
		Where("follower_id = following_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var edges int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&edges).Error)
	assert.NotZero(t, edges)
}

func TestSeeder_SeedEngagementCountersConsistent(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db, SeedOptions{SkipBcrypt: true})

	users, err := s.SeedSocialMesh(6)
	require.NoError(t, err)
	posts, err := s.SeedEngagement(users, 15)
	require.NoError(t, err)
	assert.Len(t, posts, 15)

	var stored []models.Post
	require.NoError(t, db.Find(&stored).Error)
	for _, p := range stored {
		var likes, comments int64
		require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&likes).Error)
		require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&comments).Error)
		assert.Equal(t, likes, int64(p.LikeCount), "post %d like counter drifted", p.ID)
		assert.Equal(t, comments, int64(p.CommentCount), "post %d comment counter drifted", p.ID)
	}
}

func TestSeeder_SeedEngagementRequiresUsers(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db, SeedOptions{})
	_, err := s.SeedEngagement(nil, 5)
	assert.Error(t, err)
}

func TestResolvePreset(t *testing.T) {
	t.Run("BuiltinByName", func(t *testing.T) {
		p, err := ResolvePreset("standard")
		require.NoError(t, err)
		assert.Equal(t, 50, p.Users)
		assert.Equal(t, 200, p.Posts)
	})

	t.Run("NameIsCaseInsensitive", func(t *testing.T) {
		p, err := ResolvePreset("MINIMAL")
		require.NoError(t, err)
		assert.Equal(t, "minimal", p.Name)
	})

	t.Run("UnknownName", func(t *testing.T) {
		_, err := ResolvePreset("gigantic")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown preset")
	})

	t.Run("PathLoadsYAMLFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "demo.yml")
		data := "name: demo\nusers: 12\nposts: 40\nmax_days: 30\nclean_db: true\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		p, err := ResolvePreset(path)
		require.NoError(t, err)
		assert.Equal(t, "demo", p.Name)
		assert.Equal(t, 12, p.Users)
		assert.Equal(t, 30, p.MaxDays)
		assert.True(t, p.CleanDB)
	})

	t.Run("FileWithoutUsersRejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.yml")
		require.NoError(t, os.WriteFile(path, []byte("name: empty\n"), 0o600))
		_, err := ResolvePreset(path)
		assert.Error(t, err)
	})
}

func TestGenerateText(t *testing.T) {
	s := &Seeder{rng: rand.New(rand.NewSource(1))}

	sentence := s.generateSentence()
	assert.NotEmpty(t, sentence)
	assert.True(t, strings.HasSuffix(sentence, ".") || strings.HasSuffix(sentence, "!"))

	paragraph := s.generateParagraph(4)
	assert.Equal(t, 4, strings.Count(paragraph, ".")+strings.Count(paragraph, "!"))

	assert.Equal(t, "Hello", capitalize("hello"))
	assert.Equal(t, "", capitalize(""))
}
