package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clikenova/storefront/internal/core/domain"
)

const (
	collectionCourses = "courses"
	collectionModules = "course_modules"
	collectionVideos  = "course_videos"
)

// CourseRepository reads and writes course content spread over the courses,
// course_modules and course_videos collections.
type CourseRepository struct {
	courses *mongo.Collection
	modules *mongo.Collection
	videos  *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{
		courses: db.Collection(collectionCourses),
		modules: db.Collection(collectionModules),
		videos:  db.Collection(collectionVideos),
	}
}

type courseDoc struct {
	ID           string    `bson:"_id"`
	ProductID    string    `bson:"product_id"`
	Title        string    `bson:"title"`
	Description  string    `bson:"description,omitempty"`
	TotalMinutes int       `bson:"total_minutes"`
	Level        string    `bson:"level"`
	Certificate  bool      `bson:"certificate"`
	CreatedAt    time.Time `bson:"created_at"`
}

type moduleDoc struct {
	ID          string    `bson:"_id"`
	CourseID    string    `bson:"course_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description,omitempty"`
	Position    int       `bson:"position"`
	Active      bool      `bson:"active"`
	CreatedAt   time.Time `bson:"created_at"`
}

type videoDoc struct {
	ID              string    `bson:"_id"`
	ModuleID        string    `bson:"module_id"`
	Title           string    `bson:"title"`
	Description     string    `bson:"description,omitempty"`
	URL             string    `bson:"url"`
	DurationSeconds int       `bson:"duration_seconds"`
	Position        int       `bson:"position"`
	Preview         bool      `bson:"preview"`
	Active          bool      `bson:"active"`
	UploadedAt      time.Time `bson:"uploaded_at"`
}

var byPosition = options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

func (r *CourseRepository) Outline(ctx context.Context, productID string) (*domain.CourseOutline, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c courseDoc
	if err := r.courses.FindOne(ctx, bson.M{"product_id": productID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	var modules []moduleDoc
	cur, err := r.modules.Find(ctx, bson.M{"course_id": c.ID, "active": true}, byPosition)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	if err := cur.All(ctx, &modules); err != nil {
		return nil, fmt.Errorf("decode modules: %w", err)
	}

	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	var videos []videoDoc
	if len(ids) > 0 {
		cur, err = r.videos.Find(ctx, bson.M{"module_id": bson.M{"$in": ids}, "active": true}, byPosition)
		if err != nil {
			return nil, fmt.Errorf("list videos: %w", err)
		}
		if err := cur.All(ctx, &videos); err != nil {
			return nil, fmt.Errorf("decode videos: %w", err)
		}
	}

	byModule := make(map[string][]domain.Video, len(modules))
	for _, v := range videos {
		byModule[v.ModuleID] = append(byModule[v.ModuleID], domain.Video{
			ID:              v.ID,
			ModuleID:        v.ModuleID,
			Title:           v.Title,
			Description:     v.Description,
			URL:             v.URL,
			DurationSeconds: v.DurationSeconds,
			Position:        v.Position,
			Preview:         v.Preview,
			Active:          v.Active,
			UploadedAt:      v.UploadedAt.UTC(),
		})
	}

	out := &domain.CourseOutline{
		Course: domain.Course{
			ID:           c.ID,
			ProductID:    c.ProductID,
			Title:        c.Title,
			Description:  c.Description,
			TotalMinutes: c.TotalMinutes,
			Level:        domain.CourseLevel(c.Level),
			Certificate:  c.Certificate,
			CreatedAt:    c.CreatedAt.UTC(),
		},
		Modules: make([]domain.ModuleOutline, 0, len(modules)),
	}
	for _, m := range modules {
		out.Modules = append(out.Modules, domain.ModuleOutline{
			Module: domain.Module{
				ID:          m.ID,
				CourseID:    m.CourseID,
				Title:       m.Title,
				Description: m.Description,
				Position:    m.Position,
				Active:      m.Active,
				CreatedAt:   m.CreatedAt.UTC(),
			},
			Videos: byModule[m.ID],
		})
	}
	return out, nil
}

// SaveOutline replaces the course and all of its modules and videos.
func (r *CourseRepository) SaveOutline(ctx context.Context, o *domain.CourseOutline) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c := courseDoc{
		ID:           o.ID,
		ProductID:    o.ProductID,
		Title:        o.Title,
		Description:  o.Description,
		TotalMinutes: o.TotalMinutes,
		Level:        string(o.Level),
		Certificate:  o.Certificate,
		CreatedAt:    o.CreatedAt.UTC(),
	}
	if _, err := r.courses.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}

	var oldModules []string
	cur, err := r.modules.Find(ctx, bson.M{"course_id": c.ID})
	if err != nil {
		return fmt.Errorf("list modules: %w", err)
	}
	var existing []moduleDoc
	if err := cur.All(ctx, &existing); err != nil {
		return fmt.Errorf("decode modules: %w", err)
	}
	for _, m := range existing {
		oldModules = append(oldModules, m.ID)
	}
	if len(oldModules) > 0 {
		if _, err := r.videos.DeleteMany(ctx, bson.M{"module_id": bson.M{"$in": oldModules}}); err != nil {
			return fmt.Errorf("delete videos: %w", err)
		}
	}
	if _, err := r.modules.DeleteMany(ctx, bson.M{"course_id": c.ID}); err != nil {
		return fmt.Errorf("delete modules: %w", err)
	}

	var modules, videos []interface{}
	for _, m := range o.Modules {
		modules = append(modules, moduleDoc{
			ID:          m.ID,
			CourseID:    c.ID,
			Title:       m.Title,
			Description: m.Description,
			Position:    m.Position,
			Active:      m.Active,
			CreatedAt:   m.CreatedAt.UTC(),
		})
		for _, v := range m.Videos {
			videos = append(videos, videoDoc{
				ID:              v.ID,
				ModuleID:        m.ID,
				Title:           v.Title,
				Description:     v.Description,
				URL:             v.URL,
				DurationSeconds: v.DurationSeconds,
				Position:        v.Position,
				Preview:         v.Preview,
				Active:          v.Active,
				UploadedAt:      v.UploadedAt.UTC(),
			})
		}
	}
	if len(modules) > 0 {
		if _, err := r.modules.InsertMany(ctx, modules); err != nil {
			return fmt.Errorf("insert modules: %w", err)
		}
	}
	if len(videos) > 0 {
		if _, err := r.videos.InsertMany(ctx, videos); err != nil {
			return fmt.Errorf("insert videos: %w", err)
		}
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the course collections.
func (r *CourseRepository) EnsureIndexes(ctx context.Context) error {
	if err := createIndexes(ctx, r.courses,
		mongo.IndexModel{Keys: bson.D{{Key: "product_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	); err != nil {
		return err
	}
	if err := createIndexes(ctx, r.modules,
		mongo.IndexModel{Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "position", Value: 1}}},
	); err != nil {
		return err
	}
	return createIndexes(ctx, r.videos,
		mongo.IndexModel{Keys: bson.D{{Key: "module_id", Value: 1}, {Key: "position", Value: 1}}},
	)
}
