package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/metal-stack/v"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/datastore"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/eventbus"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/metrics"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/netbox"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/s3client"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/service"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/session"
	"github.com/metal-stack/floorplan-api/health"
)

const (
	cfgFileType = "yaml"
	moduleName  = "floorplan-api"
)

type backend interface {
	session.Backend
	service.AssetLookup
	Health(ctx context.Context) error
}

var (
	cfgFile  string
	ds       *datastore.RethinkStore
	store    backend
	nsq      *eventbus.NSQClient
	uploader *s3client.Client
	logger   *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:     moduleName,
	Short:   "an api to edit datacenter floorplans",
	Version: v.V.String(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
		initBackend()
		initEventBus()
		initS3()
		initSignalHandlers()
	},
	Run: func(cmd *cobra.Command, args []string) {
		run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "failed executing root command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "alternative path to config file")
	rootCmd.Flags().StringP("log-level", "", "info", "the application log level")

	rootCmd.Flags().StringP("bind-addr", "", "127.0.0.1", "the bind addr of the api server")
	rootCmd.Flags().IntP("port", "", 8080, "the port to serve on")
	rootCmd.Flags().StringP("base-path", "", "/", "the base path of the api server")

	rootCmd.Flags().StringP("backend", "", "rethinkdb", "the floorplan backend to use (rethinkdb|netbox)")

	rootCmd.Flags().StringP("db-name", "", "floorplanapi", "the database name to use")
	rootCmd.Flags().StringP("db-addr", "", "", "the database address string to use")
	rootCmd.Flags().StringP("db-user", "", "", "the database user to use")
	rootCmd.Flags().StringP("db-password", "", "", "the database password to use")

	rootCmd.Flags().StringP("netbox-addr", "", "localhost:8001", "the address of netbox")
	rootCmd.Flags().StringP("netbox-api-token", "", "", "the api token to access netbox")
	rootCmd.Flags().IntP("netbox-retries", "", 3, "the amount of retries for failing netbox requests")

	rootCmd.Flags().StringP("nsqd-addr", "", "nsqd:4150", "the address of the nsqd")
	rootCmd.Flags().StringP("nsqd-http-addr", "", "nsqd:4151", "the address of the nsqd rest endpoint")

	rootCmd.Flags().StringP("s3-address", "", "", "the url of the s3 server that stores exported floorplans, exports are not uploaded if empty")
	rootCmd.Flags().StringP("s3-key", "", "", "the key of the s3 server that stores exported floorplans")
	rootCmd.Flags().StringP("s3-secret", "", "", "the secret of the s3 server that stores exported floorplans")
	rootCmd.Flags().StringP("s3-bucket", "", "floorplan-exports", "the bucket that stores exported floorplans")

	err := viper.BindPFlags(rootCmd.Flags())
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("FLOORPLAN_API")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType(cfgFileType)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "config file path set explicitly, but unreadable: %v\n", err)
			os.Exit(1)
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("/etc/" + moduleName)
		viper.AddConfigPath("$HOME/." + moduleName)
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			usedCfg := viper.ConfigFileUsed()
			if usedCfg != "" {
				fmt.Fprintf(os.Stderr, "config file %s unreadable: %v\n", usedCfg, err)
				os.Exit(1)
			}
		}
	}
}

func initLogging() {
	level, err := zapcore.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "unparsable log level %q: %v\n", viper.GetString("log-level"), err)
		os.Exit(1)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create logger: %v\n", err)
		os.Exit(1)
	}

	logger = l.Sugar().With("app", moduleName)
	floorplan.SetLogger(logger.Named("floorplan"))

	if usedCfg := viper.ConfigFileUsed(); usedCfg != "" {
		logger.Infow("read config file", "config-file", usedCfg)
	}
}

func initSignalHandlers() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		logger.Errorw("received keyboard interrupt, shutting down...")
		if nsq != nil {
			nsq.Stop()
		}
		if ds != nil {
			logger.Infow("closing connection to datastore")
			err := ds.Close()
			if err != nil {
				logger.Errorw("unable to properly shutdown datastore", "error", err)
				os.Exit(1)
			}
		}
		_ = logger.Sync()
		os.Exit(0)
	}()
}

func initBackend() {
	ctx := context.Background()

	switch b := viper.GetString("backend"); b {
	case "rethinkdb":
		ds = datastore.New(
			logger.Named("datastore"),
			viper.GetString("db-addr"),
			viper.GetString("db-name"),
			viper.GetString("db-user"),
			viper.GetString("db-password"),
		)
		err := ds.Connect(ctx)
		if err != nil {
			logger.Fatalw("cannot connect to datastore", "error", err)
		}
		err = ds.Initialize(ctx)
		if err != nil {
			logger.Fatalw("error initializing datastore", "error", err)
		}
		store = ds
	case "netbox":
		store = netbox.New(
			logger.Named("netbox"),
			viper.GetString("netbox-addr"),
			viper.GetString("netbox-api-token"),
			viper.GetInt("netbox-retries"),
		)
	default:
		logger.Fatalw("backend not supported", "backend", b)
	}
}

func initEventBus() {
	nsqd := viper.GetString("nsqd-addr")
	httpnsqd := viper.GetString("nsqd-http-addr")

	nsq = eventbus.NewNSQ(logger.Named("eventbus"), nsqd, httpnsqd, nil)

	ctx := context.Background()
	err := nsq.WaitForPublisher(ctx)
	if err != nil {
		logger.Fatalw("cannot create nsq publisher", "error", err)
	}
	logger.Infow("nsq connected", "nsqd", nsqd)

	err = nsq.WaitForTopicsCreated(ctx, floorplan.Topics)
	if err != nil {
		logger.Fatalw("cannot create topics", "error", err)
	}
}

func initS3() {
	addr := viper.GetString("s3-address")
	if addr == "" {
		logger.Infow("s3 address not set, exports are not uploaded")
		return
	}

	c, err := s3client.New(
		logger.Named("s3"),
		addr,
		viper.GetString("s3-key"),
		viper.GetString("s3-secret"),
		viper.GetString("s3-bucket"),
	)
	if err != nil {
		logger.Fatalw("cannot create s3 client", "error", err)
	}
	uploader = c
	logger.Infow("s3 client created", "address", addr, "bucket", viper.GetString("s3-bucket"))
}

func run() {
	service.BasePath = viper.GetString("base-path")
	if !strings.HasSuffix(service.BasePath, "/") {
		service.BasePath += "/"
	}

	var up service.Uploader
	if uploader != nil {
		up = uploader
	}

	restful.DefaultContainer.Add(service.NewFloorplan(logger.Named("floorplan-service"), store, store, nsq, up))
	restful.DefaultContainer.Add(service.NewScale(logger.Named("scale-service")))
	if ds != nil {
		restful.DefaultContainer.Add(service.NewImage(logger.Named("image-service"), ds))
		restful.DefaultContainer.Add(service.NewAsset(logger.Named("asset-service"), ds))
	}
	restful.DefaultContainer.Add(health.New(logger.Named("health"), service.BasePath, map[string]health.HealthCheck{
		viper.GetString("backend"): store.Health,
	}))
	restful.DefaultContainer.Filter(metrics.RestfulMetrics)

	config := restfulspec.Config{
		WebServices:                   restful.RegisteredWebServices(),
		APIPath:                       service.BasePath + "apidocs.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	restful.DefaultContainer.Add(restfulspec.NewOpenAPIService(config))

	// enable CORS for the UI to work.
	cors := restful.CrossOriginResourceSharing{
		AllowedHeaders: []string{"Content-Type", "Accept", "X-Request-Id"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		CookiesAllowed: false,
		Container:      restful.DefaultContainer,
	}
	restful.DefaultContainer.Filter(cors.Filter)

	http.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", viper.GetString("bind-addr"), viper.GetInt("port"))
	logger.Infow("start floorplan api", "version", v.V.String(), "address", addr, "base-path", service.BasePath)

	server := &http.Server{
		Addr:              addr,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: time.Minute,
	}
	err := server.ListenAndServe()
	if err != nil {
		logger.Fatalw("failed to start floorplan api", "error", err)
	}
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       moduleName,
			Description: "API to edit datacenter floorplans",
			Contact: &spec.ContactInfo{
				ContactInfoProps: spec.ContactInfoProps{
					Name: "metal-stack",
					URL:  "https://metal-stack.io",
				},
			},
			License: &spec.License{
				LicenseProps: spec.LicenseProps{
					Name: "MIT",
					URL:  "http://mit.org",
				},
			},
			Version: v.V.String(),
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{
			Name:        "Floorplan",
			Description: "Editing floorplans and their canvas objects",
		}},
		{TagProps: spec.TagProps{
			Name:        "Image",
			Description: "Background images of floorplans",
		}},
		{TagProps: spec.TagProps{
			Name:        "Asset",
			Description: "Racks and devices of the asset inventory",
		}},
		{TagProps: spec.TagProps{
			Name:        "Scale",
			Description: "Scale and unit conversions",
		}},
		{TagProps: spec.TagProps{
			Name:        "health",
			Description: "Health of the api and its backend",
		}},
	}
}
