package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/orbithall/widget/pkg/api"
	"github.com/orbithall/widget/pkg/storage"
	"github.com/orbithall/widget/pkg/storage/postgres"
	"github.com/orbithall/widget/pkg/storage/sqlite"
)

// имя переменной окружения
const (
	portEnv = "ORBITHALL_PORT"
	dbURL   = "DB_URL"
	keysEnv = "ORBITHALL_API_KEYS" // допустимые ключи API через запятую
)

// настройки базы данных
const (
	maxConns        = 50
	maxConnIdleTime = 4 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// переменные можно найти не только в файле
	_ = godotenv.Load()

	zl := zapLogger(os.Stdout)
	defer func() {
		_ = zl.Sync()
	}()

	em, err := envs(dbURL, portEnv, keysEnv)
	if err != nil {
		return err
	}

	keys := strings.Split(em[keysEnv], ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}

	db, err := connectDB(em[dbURL], 5, time.Second)
	if err != nil {
		return err
	}
	defer db.Close()

	// создание контекста для регулирования
	// закрытия всех подсистем
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)

	servers := []*http.Server{
		startRestServer(em[portEnv], db, keys, zl, &wg),
	}

	// логика закрытия сервера
	cancelation(cancel, zl, servers)

	wg.Wait()

	return nil
}

// cancelation отслеживает сигналы прерывания и,
// если они получены, "мягко" отменяет контекст приложения и
// гасит серверы.
func cancelation(cancel context.CancelFunc, logger *zap.Logger, servers []*http.Server) {
	// ловим сигналы прерывания, типа CTRL-C
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-stop // получили сигнал
		sl := logger.Sugar()
		sl.Warnf("got signal %q", sig)

		// закрываем серверы
		for i := range servers {
			if err := servers[i].Shutdown(context.Background()); err != nil {
				sl.Info(err)
			}
		}

		cancel() // закрываем контекст приложения
	}()
}

// envs собирает ожидаемые переменные окружения,
// возвращает ошибку, если какая-либо из переменных env не задана.
func envs(envs ...string) (map[string]string, error) {
	em := make(map[string]string, len(envs))
	var ok bool
	for _, env := range envs {
		if em[env], ok = os.LookupEnv(env); !ok {
			return nil, fmt.Errorf("environment variable %q must be set", env)
		}
	}
	return em, nil
}

var ErrRetryExceeded = errors.New("connect DB: number of retries exceeded")

// connectDB подключает хранилище по строке соединения:
// postgres для postgres:// и postgresql://, иначе sqlite.
func connectDB(connstr string, retries int, interval time.Duration) (storage.Storage, error) {

	pg := strings.HasPrefix(connstr, "postgres://") ||
		strings.HasPrefix(connstr, "postgresql://")

	for i := 0; i < retries; i++ {
		db, err := open(connstr, pg)
		if err != nil {
			log.Println(err)
			time.Sleep(interval)
			continue
		}
		return db, nil
	}

	return nil, ErrRetryExceeded
}

func open(connstr string, pg bool) (storage.Storage, error) {
	ctx := context.Background()

	if pg {
		db, err := postgres.New(connstr)
		if err != nil {
			return nil, err
		}
		return db, db.Init(ctx)
	}

	db, err := sqlite.New(connstr)
	if err != nil {
		return nil, err
	}
	db.DB.SetConnMaxIdleTime(maxConnIdleTime)
	db.DB.SetMaxOpenConns(maxConns)
	db.DB.SetMaxIdleConns(maxConns)
	return db, db.Init(ctx)
}

// startRestServer запускает сервер REST API.
func startRestServer(addr string, db storage.Storage, keys []string, logger *zap.Logger, wg *sync.WaitGroup) *http.Server {
	// REST API
	api := api.New(db, keys, logger)

	// конфигурируем сервер
	srv := &http.Server{
		Addr:              addr,
		Handler:           api,
		IdleTimeout:       3 * time.Minute,
		ReadHeaderTimeout: time.Minute,
	}

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error(err.Error())
		}
		logger.Warn("server is shut down")
		wg.Done()
	}()
	logger.Info("REST server started", zap.String("address", srv.Addr))
	return srv
}

var encoderCfg = zapcore.EncoderConfig{
	MessageKey: "msg",
	NameKey:    "name",

	LevelKey:    "level",
	EncodeLevel: zapcore.CapitalLevelEncoder,

	CallerKey:    "caller",
	EncodeCaller: zapcore.ShortCallerEncoder,

	TimeKey:    "time",
	EncodeTime: zapcore.RFC3339TimeEncoder,
}

func zapLogger(w io.Writer) *zap.Logger {
	zl := zap.New(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.Lock(zapcore.AddSync(w)),
			zapcore.DebugLevel,
		),
		zap.AddCaller(),
	)
	return zl
}
