package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-social/config"
	app "github.com/oksasatya/go-ddd-social/internal/application"
	repo "github.com/oksasatya/go-ddd-social/internal/domain/repository"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager

	users         repo.UserRepository
	posts         repo.PostRepository
	notifications repo.NotificationRepository

	mediaStore app.MediaStore
	userIndex  app.UserIndexer
	jobs       app.JobPublisher
)

func SetConfig(c *config.Config)    { cfg = c }
func GetConfig() *config.Config     { return cfg }
func SetLogger(l *logrus.Logger)    { logger = l }
func GetLogger() *logrus.Logger     { return logger }
func SetPGPool(p *pgxpool.Pool)     { pgPool = p }
func GetPGPool() *pgxpool.Pool      { return pgPool }
func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetGCS(s *storage.Client)      { gcsClient = s }
func GetGCS() *storage.Client       { return gcsClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }
func SetJWT(m *helpers.JWTManager)  { jwtManager = m }
func GetJWT() *helpers.JWTManager   { return jwtManager }

// SetStores registers the three repositories (Postgres or memory).
func SetStores(u repo.UserRepository, p repo.PostRepository, n repo.NotificationRepository) {
	users, posts, notifications = u, p, n
}
func GetUsers() repo.UserRepository                 { return users }
func GetPosts() repo.PostRepository                 { return posts }
func GetNotifications() repo.NotificationRepository { return notifications }

func SetMedia(m app.MediaStore)      { mediaStore = m }
func GetMedia() app.MediaStore       { return mediaStore }
func SetUserIndex(x app.UserIndexer) { userIndex = x }
func GetUserIndex() app.UserIndexer  { return userIndex }
func SetJobs(p app.JobPublisher)     { jobs = p }
func GetJobs() app.JobPublisher      { return jobs }
