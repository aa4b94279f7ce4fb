package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/prison-staff-admin/config"
	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
	"github.com/oksasatya/prison-staff-admin/pkg/validation"
)

// Process-wide components built in cmd/main.go; router modules auto-wire from them.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	jwtManager *helpers.JWTManager
	validator  *validation.Validator

	notifier    application.Notifier
	avatarStore application.AvatarStore
	userIndexer application.UserIndexer
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetValidator(v *validation.Validator) { validator = v }
func GetValidator() *validation.Validator  { return validator }

func SetNotifier(n application.Notifier)       { notifier = n }
func GetNotifier() application.Notifier        { return notifier }
func SetAvatarStore(s application.AvatarStore) { avatarStore = s }
func GetAvatarStore() application.AvatarStore  { return avatarStore }

// SetUserIndexer stores the search index; leave unset to disable search.
func SetUserIndexer(i application.UserIndexer) { userIndexer = i }
func GetUserIndexer() application.UserIndexer  { return userIndexer }
