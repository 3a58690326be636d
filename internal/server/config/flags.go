package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/agritrack/internal/flagx"
)

var ownFlags = []string{"-a", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-l", "-f", "-w", "-r", "-k", "-n", "-m", "-o", "-v"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes (0 disables expiry)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   public base URL for stored artifacts
//	-f string   prediction service base URL
//	-w int      prediction timeout, seconds
//	-r string   Redis address for token revocations
//	-k int      bcrypt cost
//	-n int      max concurrent password hashes
//	-m int      max upload size, MiB
//	-o string   comma-separated CORS origins
//	-v string   log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], ownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "l", config.S3PublicBaseURL, "public base URL for artifacts")

	fs.StringVar(&config.PredictionBaseURL, "f", config.PredictionBaseURL, "prediction service base URL")
	predictionTimeout := fs.Int("w", int(config.PredictionTimeout.Seconds()), "prediction timeout (in seconds)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for token revocations")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.HashConcurrency, "n", config.HashConcurrency, "max concurrent password hashes")
	maxUpload := fs.Int64("m", config.MaxUploadSize>>20, "max upload size (in MiB)")
	origins := fs.String("o", strings.Join(config.CORSAllowedOrigins, ","), "comma-separated CORS origins")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.PredictionTimeout = time.Duration(*predictionTimeout) * time.Second
	config.MaxUploadSize = *maxUpload << 20
	config.CORSAllowedOrigins = splitOrigins(*origins)
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
