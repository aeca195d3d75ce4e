package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/provenset/treap-accumulator/store"
	"github.com/provenset/treap-accumulator/treap"
)

// Handler serves the prover API. Mutations serialize through the mutex and
// persist the new snapshot before the served tree is swapped, so the
// published root always refers to a durable state.
type Handler struct {
	mu    sync.Mutex
	tree  *treap.Tree
	store *store.TreeStore
}

type RootResponse struct {
	Root string `json:"root"`
	Size int    `json:"size"`
}

type ProofResponse struct {
	Root  string `json:"root"`
	Kind  string `json:"kind"`
	Proof string `json:"proof"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Root(rw http.ResponseWriter, req *http.Request) {
	tree := h.snapshot()
	root := tree.Root()
	writeJSON(rw, http.StatusOK, RootResponse{Root: hex.EncodeToString(root[:]), Size: tree.Size()})
}

func (h *Handler) ProveInclusion(rw http.ResponseWriter, req *http.Request) {
	element, err := elementVar(req)
	if err != nil {
		writeError(rw, "prove_inclusion", err)
		return
	}
	tree := h.snapshot()
	proof, err := tree.ProveInclusion(element)
	if err != nil {
		writeError(rw, "prove_inclusion", err)
		return
	}
	writeProof(rw, "prove_inclusion", tree.Root(), proof)
}

func (h *Handler) ProveExclusion(rw http.ResponseWriter, req *http.Request) {
	element, err := elementVar(req)
	if err != nil {
		writeError(rw, "prove_exclusion", err)
		return
	}
	tree := h.snapshot()
	proof, err := tree.ProveExclusion(element)
	if err != nil {
		writeError(rw, "prove_exclusion", err)
		return
	}
	writeProof(rw, "prove_exclusion", tree.Root(), proof)
}

func (h *Handler) Insert(rw http.ResponseWriter, req *http.Request) {
	h.mutate(rw, req, "insert", func(t *treap.Tree, element []byte) (*treap.Tree, *treap.Proof, error) {
		return t.Insert(element)
	})
}

func (h *Handler) Remove(rw http.ResponseWriter, req *http.Request) {
	h.mutate(rw, req, "remove", func(t *treap.Tree, element []byte) (*treap.Tree, *treap.Proof, error) {
		return t.Remove(element)
	})
}

func (h *Handler) mutate(rw http.ResponseWriter, req *http.Request, op string, fn func(*treap.Tree, []byte) (*treap.Tree, *treap.Proof, error)) {
	element, err := elementVar(req)
	if err != nil {
		writeError(rw, op, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next, proof, err := fn(h.tree, element)
	if err != nil {
		writeError(rw, op, err)
		return
	}
	if err := h.store.Save(next); err != nil {
		writeError(rw, op, err)
		return
	}
	h.tree = next
	writeProof(rw, op, next.Root(), proof)
}

func (h *Handler) snapshot() *treap.Tree {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tree
}

func elementVar(req *http.Request) ([]byte, error) {
	return hex.DecodeString(mux.Vars(req)["element"])
}

func writeProof(rw http.ResponseWriter, op string, root treap.Digest, proof *treap.Proof) {
	raw, err := proof.MarshalBinary()
	if err != nil {
		writeError(rw, op, err)
		return
	}
	operationCtr.WithLabelValues(op, "ok").Inc()
	writeJSON(rw, http.StatusOK, ProofResponse{
		Root:  hex.EncodeToString(root[:]),
		Kind:  proof.Kind.String(),
		Proof: hex.EncodeToString(raw),
	})
}

func writeError(rw http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	outcome := "error"
	switch {
	case errors.Is(err, treap.ErrElementExists):
		status, outcome = http.StatusConflict, "exists"
	case errors.Is(err, treap.ErrElementNotFound):
		status, outcome = http.StatusNotFound, "not_found"
	case errors.Is(err, treap.ErrInvalidProof):
		status, outcome = http.StatusBadRequest, "invalid_proof"
	case errors.As(err, new(hex.InvalidByteError)):
		status, outcome = http.StatusBadRequest, "bad_element"
	case errors.Is(err, hex.ErrLength):
		status, outcome = http.StatusBadRequest, "bad_element"
	}
	operationCtr.WithLabelValues(op, outcome).Inc()
	writeJSON(rw, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(rw http.ResponseWriter, status int, body any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(body); err != nil {
		log.Println(err)
	}
}
