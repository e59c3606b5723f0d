package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ancientlore/cachefs"
	"github.com/ancientlore/scribe/virtual"
	"github.com/ancientlore/scribe/web"
	"github.com/facebookgo/flagenv"
	"github.com/golang/groupcache"
)

// main is where it all begins. 😀
func main() {
	// Setup flags
	var (
		fPort              = flag.Int("port", 8080, "Port to listen on.")
		fReadTimeout       = flag.Duration("readtimeout", 10*time.Second, "HTTP server read timeout.")
		fReadHeaderTimeout = flag.Duration("readheadertimeout", 5*time.Second, "HTTP server read header timeout.")
		fWriteTimeout      = flag.Duration("writetimeout", 30*time.Second, "HTTP server write timeout.")
		fRoot              = flag.String("root", ".", "Root of web site.")
		fCacheSize         = flag.Int64("cachesize", 10*1024*1024, "Size of the rendered-page cache in bytes.")
		fRevalidate        = flag.Duration("revalidate", 30*time.Second, "How often the underlying content may be re-read.")
		fWatch             = flag.Bool("watch", false, "Reload templates when the template folder changes.")
	)
	flag.Parse()
	flagenv.Parse()

	// Setup groupcache (with no peers)
	groupcache.RegisterPeerPicker(func() groupcache.PeerPicker { return groupcache.NoPeers{} })

	// Create the virtual file system over the site folder
	vfs, err := virtual.New(os.DirFS(*fRoot))
	if err != nil {
		log.Printf("Cannot create site file system for %q: %s", *fRoot, err)
		os.Exit(1)
	}
	log.Printf("Serving site from %q", *fRoot)

	// Read the site configuration
	cfg, err := vfs.Config()
	if err != nil {
		log.Printf("Cannot read site config: %s", err)
		os.Exit(2)
	}
	var (
		expires       time.Duration
		staticExpires time.Duration
		headers       map[string]string
	)
	if cfg != nil {
		expires = time.Duration(cfg.Expires)
		staticExpires = time.Duration(cfg.StaticExpires)
		headers = cfg.Headers
		log.Printf("Loaded site config: %q", cfg.Title)
	} else {
		log.Print("No site.cfg found; using defaults.")
	}

	// Wrap the site in a revalidating cache; within one interval renders
	// are served from memory, and content is re-read at most once per
	// interval per file.
	cachedFS := cachefs.New(vfs, &cachefs.Config{GroupName: "scribe", SizeInBytes: *fCacheSize, Duration: *fRevalidate})

	// Setup handlers
	handler := web.HeaderHandler(
		web.ExpiresHandler(
			gziphandler.GzipHandler(
				web.ErrorHandler(
					http.FileServer(
						http.FS(cachedFS),
					),
					cachedFS,
				),
			),
			expires,
			staticExpires,
		),
		headers)
	http.Handle("/", handler)
	http.HandleFunc("/favicon.ico", favicon(*fRoot))
	log.Print("Created handlers")

	// Watch the template folder in development mode
	if *fWatch {
		stop, err := watchTemplates(filepath.Join(*fRoot, "template"), vfs)
		if err != nil {
			log.Printf("Not watching templates: %s", err)
		} else {
			defer stop()
			log.Print("Watching template folder for changes")
		}
	}

	// Create HTTP server
	var srv = http.Server{
		Addr:              fmt.Sprintf(":%d", *fPort),
		ReadTimeout:       *fReadTimeout,
		WriteTimeout:      *fWriteTimeout,
		ReadHeaderTimeout: *fReadHeaderTimeout,
	}

	// Create signal handler for graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)

		// interrupt signal sent from terminal
		signal.Notify(sigint, os.Interrupt)
		// sigterm signal sent from kubernetes
		signal.Notify(sigint, syscall.SIGTERM)

		<-sigint

		// We received an interrupt signal, shut down.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Printf("HTTP server Shutdown: %v", err)
		}
	}()

	// Listen for requests
	log.Print("Listening for requests")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Printf("HTTP server: %v", err)
	} else {
		log.Print("Goodbye.")
	}
}

// favicon redirects to the favicon in the static folder, if present.
func favicon(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := os.Stat(filepath.Join(root, "static", "favicon.ico"))
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/static/favicon.ico", http.StatusPermanentRedirect)
	}
}
