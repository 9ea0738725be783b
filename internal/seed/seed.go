// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"waveline/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var (
	postTags = []string{
		"general", "movies", "music", "television", "gaming",
		"fitness", "hobbies", "sports", "technology",
		"anime", "books", "food", "travel", "programming", "linux",
		"frontend", "backend", "devops", "cloud", "ai", "startups",
		"homelab", "art", "history", "philosophy", "science",
		"pets", "finance", "investing", "crypto",
	}

	adjectives = []string{
		"amazing", "incredible", "fascinating", "challenging", "excited", "happy", "proud",
		"grateful", "inspired", "motivated", "curious", "passionate", "creative", "innovative",
		"collaborative", "productive", "efficient", "effective", "powerful", "simple", "complex",
		"beautiful", "elegant", "robust", "scalable", "secure", "fast", "reliable", "dynamic",
		"intense", "focused", "driven", "ambitious", "humble", "thoughtful", "kind",
	}

	nouns = []string{
		"project", "team", "community", "code", "design", "architecture", "system", "app",
		"website", "platform", "framework", "library", "tool", "solution", "idea", "concept",
		"challenge", "opportunity", "goal", "dream", "journey", "experience", "lesson", "skill",
		"technology", "innovation", "future", "world", "life", "work", "passion", "hobby",
	}

	verbs = []string{
		"built", "created", "designed", "developed", "launched", "deployed", "shipped",
		"fixed", "solved", "learned", "discovered", "explored", "mastered", "shared",
		"wrote", "read", "watched", "listened", "played", "enjoyed", "loved",
		"improved", "optimized", "refactored", "debugged", "tested", "validated",
	}
)

// Seeder orchestrates demo data creation through a Factory.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts SeedOptions) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
		//nolint:gosec // Weak random number generator is fine for seeding
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll truncates every seeded table. PostgreSQL only.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE notifications, comment_likes, likes, comments, posts, subscriptions, refresh_tokens, profiles, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// SeedSocialMesh creates users with profiles and a randomized follow graph.
// Each user follows a handful of others, weighted so early users collect
// more followers and trending-user queries have something to rank.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	log.Printf("🌱 Creating %d users...", numUsers)

	users := make([]*models.User, 0, numUsers)

	// Always include some specific users for consistency if cleaning
	if numUsers >= 3 {
		baseUsers := []string{"ada", "linus", "test"}
		for _, name := range baseUsers {
			u, err := s.factory.CreateUser(func(user *models.User) {
				user.Username = name
				user.Email = fmt.Sprintf("%s@example.com", name)
				user.Profile.Bio = "One of the OGs."
			})
			if err == nil {
				users = append(users, u)
			}
		}
	}

	for i := len(users); i < numUsers; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user %d: %v", i, err)
			continue
		}
		users = append(users, u)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	// Follow graph: each user follows 2-8 others, biased toward low indexes.
	for _, follower := range users {
		follows := 2 + s.rng.Intn(7)
		for j := 0; j < follows; j++ {
			idx := s.rng.Intn(len(users))
			if s.rng.Float32() < 0.5 {
				idx = s.rng.Intn(len(users)/3 + 1)
			}
			target := users[idx]
			if target.ID == follower.ID {
				continue
			}
			// duplicate edges hit the unique index and are skipped
			_ = s.factory.CreateSubscription(follower, target)
		}
	}

	log.Printf("✓ %d users created with follow graph", len(users))
	return users, nil
}

// SeedEngagement creates posts for the given users plus likes and comments
// on a random subset. Counters are maintained row by row so the denormalized
// counts always match the underlying tables.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to create posts for")
	}
	log.Printf("🌱 Creating %d posts with engagement...", numPosts)

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		user := users[s.rng.Intn(len(users))]
		tag := postTags[s.rng.Intn(len(postTags))]

		post, err := s.factory.CreatePost(user, tag, func(p *models.Post) {
			p.Title = capitalize(s.generateSentence())
			p.Content = s.generateParagraph(s.rng.Intn(10) + 1)
			// A slice of posts stay hidden so moderation paths have data.
			if s.rng.Float32() < 0.05 {
				p.IsPublished = false
			}
		})
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}

	// Likes and comments on a random subset of published posts.
	for _, post := range posts {
		if !post.IsPublished {
			continue
		}

		numLikes := s.rng.Intn(len(users)/2 + 1)
		seen := make(map[uint]bool, numLikes)
		for j := 0; j < numLikes; j++ {
			liker := users[s.rng.Intn(len(users))]
			if seen[liker.ID] {
				continue
			}
			seen[liker.ID] = true
			if err := s.factory.CreateLike(liker, post); err != nil {
				return nil, err
			}
		}

		numComments := s.rng.Intn(6)
		for j := 0; j < numComments; j++ {
			author := users[s.rng.Intn(len(users))]
			comment, err := s.factory.CreateComment(author, post, func(c *models.Comment) {
				c.Content = s.generateSentence()
			})
			if err != nil {
				return nil, err
			}
			if s.rng.Float32() < 0.3 {
				liker := users[s.rng.Intn(len(users))]
				if err := s.factory.CreateCommentLike(liker, comment); err != nil {
					return nil, err
				}
			}
		}
	}

	log.Printf("✓ %d posts created with likes and comments", len(posts))
	return posts, nil
}

// Seed runs the full social mesh plus engagement pipeline.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	s := NewSeeder(db, SeedOptions{})

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := s.SeedSocialMesh(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}

	if _, err := s.SeedEngagement(users, opts.NumPosts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func (s *Seeder) generateSentence() string {
	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	verb := verbs[s.rng.Intn(len(verbs))]

	templates := []string{
		"Just %s an %s %s.",
		"The %s %s was %s.",
		"I %s this %s %s!",
		"What an %s %s to %s.",
		"Time to %s the %s %s.",
	}

	template := templates[s.rng.Intn(len(templates))]
	return fmt.Sprintf(template, verb, adj, noun)
}

func (s *Seeder) generateParagraph(sentences int) string {
	var sb strings.Builder
	for i := 0; i < sentences; i++ {
		sb.WriteString(s.generateSentence())
		sb.WriteString(" ")
	}
	return strings.TrimSpace(sb.String())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(string(s[0])) + s[1:]
}
