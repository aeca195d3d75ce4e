// Command treapd is a prover daemon: it holds the full treap, persists every
// snapshot, and serves the proofs that remote commitment-only accumulators
// need to follow along.
package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/gorilla/mux"

	"github.com/provenset/treap-accumulator/db"
	"github.com/provenset/treap-accumulator/store"
	"github.com/provenset/treap-accumulator/treap"
)

var (
	configFile = flag.String("config", "", "Location of config file.")
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.LUTC)
	flag.Parse()

	if *configFile == "" {
		log.Fatalf("No config file provided, see --help.")
	}
	config, err := ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	pdb, err := pebble.Open(config.DataDir, &pebble.Options{})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	database := db.NewPebble(pdb)
	defer database.Close()

	hash := treap.NewSHA256()
	treeStore := store.New(database, hash)

	tree, err := loadOrInitTree(treeStore, hash)
	if err != nil {
		log.Fatalf("Failed to load tree snapshot: %v", err)
	}
	log.Printf("Serving set of %d elements, root %x", tree.Size(), tree.Root())

	if config.MetricsAddr != "" {
		go metrics(config.MetricsAddr)
	}

	h := &Handler{tree: tree, store: treeStore}
	r := mux.NewRouter()
	r.HandleFunc("/v1/root", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/v1/proof/inclusion/{element}", h.ProveInclusion).Methods(http.MethodGet)
	r.HandleFunc("/v1/proof/exclusion/{element}", h.ProveExclusion).Methods(http.MethodGet)
	r.HandleFunc("/v1/insert/{element}", h.Insert).Methods(http.MethodPost)
	r.HandleFunc("/v1/remove/{element}", h.Remove).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:    config.ServerAddr,
		Handler: r,

		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	log.Println("Starting API server.")
	log.Fatal(srv.ListenAndServe())
}

func loadOrInitTree(s *store.TreeStore, hash treap.Hasher) (*treap.Tree, error) {
	head, err := s.Head()
	if errors.Is(err, db.ErrNotFound) {
		tree, err := treap.New(hash)
		if err != nil {
			return nil, err
		}
		return tree, s.Save(tree)
	} else if err != nil {
		return nil, err
	}
	return s.Load(head)
}
