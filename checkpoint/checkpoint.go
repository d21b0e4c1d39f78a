package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/hupe1980/gibbsgo/factor"
	"github.com/hupe1980/gibbsgo/model"
	"github.com/hupe1980/gibbsgo/mrf"
)

// ErrMismatch is returned when checkpoint records disagree with the graph
// rebuilt from the serialized model.
var ErrMismatch = errors.New("checkpoint does not match its model")

// Options configure checkpoint encoding.
type Options struct {
	// Compression selects the body codec. The zero value stores the body
	// uncompressed.
	Compression Compression
}

// WithCompression selects the body compression codec.
func WithCompression(c Compression) func(*Options) {
	return func(o *Options) {
		o.Compression = c
	}
}

// Write serializes the full sampler state to w: the factorized model, all
// vertex records and all edge records. The graph topology itself is not
// stored; loading rebuilds it from the model and then overlays the
// serialized records.
//
// The caller must guarantee the graph is quiescent for the duration.
func Write(w io.Writer, g *mrf.Graph, optFns ...func(*Options)) error {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	m := g.Model()
	header := &FileHeader{
		Compression:   opts.Compression,
		VariableCount: uint64(m.NumVariables()),
		FactorCount:   uint64(m.NumFactors()),
		VertexCount:   uint64(g.NumVertices()),
		EdgeCount:     uint64(g.NumEdges()),
	}
	if err := NewWriter(w).WriteHeader(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	body, err := newBodyWriter(w, opts.Compression)
	if err != nil {
		return err
	}
	if err := writeBody(body, g, m); err != nil {
		_ = body.Close()
		return err
	}
	return body.Close()
}

func writeBody(body io.Writer, g *mrf.Graph, m *model.FactorizedModel) error {
	// The CRC covers the uncompressed body and is appended inside the
	// compressed stream, so no backpatching or seeking is needed.
	cw := NewChecksumWriter(body)
	bw := NewWriter(cw)

	if err := writeModel(bw, m); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := writeVertices(bw, g); err != nil {
		return fmt.Errorf("write vertices: %w", err)
	}
	if err := writeEdges(bw, g); err != nil {
		return fmt.Errorf("write edges: %w", err)
	}

	if err := binary.Write(body, binary.LittleEndian, cw.Sum()); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}
	return nil
}

// Read deserializes a checkpoint: it reloads the model, rebuilds the
// clique graph from it and overlays the serialized vertex and edge
// records, so the result is bit-for-bit the sampler state that was saved.
func Read(r io.Reader) (*mrf.Graph, error) {
	header, err := NewReader(r).ReadHeader()
	if err != nil {
		return nil, err
	}

	body, err := newBodyReader(r, header.Compression)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	cr := NewChecksumReader(body)
	br := NewReader(cr)

	m, err := readModel(br, header)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	g, err := mrf.NewGraph(m)
	if err != nil {
		return nil, fmt.Errorf("rebuild graph: %w", err)
	}
	if uint64(g.NumVertices()) != header.VertexCount {
		return nil, fmt.Errorf("%w: header says %d vertices, model yields %d",
			ErrMismatch, header.VertexCount, g.NumVertices())
	}
	if uint64(g.NumEdges()) != header.EdgeCount {
		return nil, fmt.Errorf("%w: header says %d edges, model yields %d",
			ErrMismatch, header.EdgeCount, g.NumEdges())
	}

	if err := readVertices(br, g); err != nil {
		return nil, fmt.Errorf("read vertices: %w", err)
	}
	if err := readEdges(br, g); err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}

	// Capture the running sum before the trailer; the stored checksum is
	// read from the decompressed stream directly so it does not hash
	// itself.
	sum := cr.Sum()
	var expected uint32
	if err := binary.Read(body, binary.LittleEndian, &expected); err != nil {
		return nil, fmt.Errorf("read checksum: %w", err)
	}
	if expected != sum {
		return nil, &ChecksumMismatchError{Expected: expected, Actual: sum}
	}

	return g, nil
}

// Save writes a checkpoint to path atomically (temp file + rename).
func Save(path string, g *mrf.Graph, optFns ...func(*Options)) error {
	return SaveToFile(path, func(w io.Writer) error {
		return Write(w, g, optFns...)
	})
}

// Load reads a checkpoint from path.
func Load(path string) (*mrf.Graph, error) {
	var g *mrf.Graph
	err := LoadFromFile(path, func(r io.Reader) error {
		var err error
		g, err = Read(r)
		return err
	})
	return g, err
}

func writeModel(bw *Writer, m *model.FactorizedModel) error {
	vars := m.Variables()
	ids := make([]uint32, len(vars))
	arities := make([]uint32, len(vars))
	for i, v := range vars {
		ids[i] = v.ID
		arities[i] = uint32(v.Arity)
	}
	if err := bw.WriteUint32Slice(ids); err != nil {
		return err
	}
	if err := bw.WriteUint32Slice(arities); err != nil {
		return err
	}

	for _, t := range m.Factors() {
		dom := t.Domain()
		if err := bw.WriteUint32(uint32(dom.NumVars())); err != nil {
			return err
		}
		for _, v := range dom.Vars() {
			if err := bw.WriteUint32(v.ID); err != nil {
				return err
			}
		}
		if err := bw.WriteFloat64(t.Weight()); err != nil {
			return err
		}
		if err := bw.WriteFloat64Slice(t.LogValues()); err != nil {
			return err
		}
	}

	// Reverse index, per variable in id order. Derivable from the factor
	// list, but carried in the stream so a reload can cross-check the
	// rebuilt index against what was saved.
	for _, v := range vars {
		factorIDs := m.FactorIDs(v.ID)
		if err := bw.WriteUint32(uint32(len(factorIDs))); err != nil {
			return err
		}
		for _, id := range factorIDs {
			if err := bw.WriteUint32(uint32(id)); err != nil {
				return err
			}
		}
	}

	names := m.VarNames()
	nameIDs := make([]uint32, 0, len(names))
	for id := range names {
		nameIDs = append(nameIDs, id)
	}
	sort.Slice(nameIDs, func(i, j int) bool { return nameIDs[i] < nameIDs[j] })

	if err := bw.WriteUint32(uint32(len(nameIDs))); err != nil {
		return err
	}
	for _, id := range nameIDs {
		if err := bw.WriteUint32(id); err != nil {
			return err
		}
		if err := bw.WriteString(names[id]); err != nil {
			return err
		}
	}
	return nil
}

func readModel(br *Reader, header *FileHeader) (*model.FactorizedModel, error) {
	// Variable and factor ids are 32-bit; larger counts cannot come from a
	// well-formed writer.
	if header.VariableCount >= 1<<32 || header.FactorCount >= 1<<32 {
		return nil, fmt.Errorf("invalid header: %d variables, %d factors exceed the id space",
			header.VariableCount, header.FactorCount)
	}

	n := int(header.VariableCount)
	ids, err := br.ReadUint32Slice(n)
	if err != nil {
		return nil, err
	}
	arities, err := br.ReadUint32Slice(n)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint32]factor.Variable, n)
	for i := range ids {
		byID[ids[i]] = factor.NewVariable(ids[i], int(arities[i]))
	}

	m := model.New()
	for f := uint64(0); f < header.FactorCount; f++ {
		numVars, err := br.ReadUint32()
		if err != nil {
			return nil, err
		}
		vs := make([]factor.Variable, numVars)
		for i := range vs {
			id, err := br.ReadUint32()
			if err != nil {
				return nil, err
			}
			v, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("factor %d references unknown variable %d", f, id)
			}
			vs[i] = v
		}
		dom, err := factor.NewDomain(vs...)
		if err != nil {
			return nil, fmt.Errorf("factor %d: %w", f, err)
		}
		t := factor.NewTable(dom)
		weight, err := br.ReadFloat64()
		if err != nil {
			return nil, err
		}
		t.SetWeight(weight)
		if err := br.ReadFloat64SliceInto(t.LogValues()); err != nil {
			return nil, err
		}
		m.AddFactor(t)
	}

	if m.NumVariables() != n {
		return nil, fmt.Errorf("%w: header says %d variables, factors reference %d",
			ErrMismatch, n, m.NumVariables())
	}

	// AddFactor rebuilt the reverse index; the stored copy must agree.
	for _, id := range ids {
		want := m.FactorIDs(id)
		count, err := br.ReadUint32()
		if err != nil {
			return nil, err
		}
		if int(count) != len(want) {
			return nil, fmt.Errorf("%w: variable %d has %d factors, checkpoint says %d",
				ErrMismatch, id, len(want), count)
		}
		for j, wantID := range want {
			got, err := br.ReadUint32()
			if err != nil {
				return nil, err
			}
			if int(got) != wantID {
				return nil, fmt.Errorf("%w: variable %d factor %d is %d, checkpoint says %d",
					ErrMismatch, id, j, wantID, got)
			}
		}
	}

	numNames, err := br.ReadUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < numNames; i++ {
		id, err := br.ReadUint32()
		if err != nil {
			return nil, err
		}
		name, err := br.ReadString()
		if err != nil {
			return nil, err
		}
		m.SetVarName(id, name)
	}

	return m, nil
}

func writeVertices(bw *Writer, g *mrf.Graph) error {
	for i := 0; i < g.NumVertices(); i++ {
		v := g.Vertex(mrf.VertexID(i))

		if err := bw.WriteUint32(v.Variable().ID); err != nil {
			return err
		}
		if err := bw.WriteUint32(uint32(v.Value())); err != nil {
			return err
		}

		factorIDs := v.FactorIDs()
		if err := bw.WriteUint32(uint32(len(factorIDs))); err != nil {
			return err
		}
		for _, id := range factorIDs {
			if err := bw.WriteUint32(uint32(id)); err != nil {
				return err
			}
		}

		if err := bw.WriteFloat64Slice(v.Belief().LogValues()); err != nil {
			return err
		}
		if err := bw.WriteFloat64Slice(v.ScratchBelief().LogValues()); err != nil {
			return err
		}
		if err := bw.WriteUint64(v.Updates()); err != nil {
			return err
		}

		// Tree state collapses to (parent, kind, height); transient
		// mark-up progress is not carried across restarts.
		if err := bw.WriteUint32(uint32(v.Parent())); err != nil {
			return err
		}
		if err := bw.WriteUint32(uint32(v.State())); err != nil {
			return err
		}
		if err := bw.WriteUint32(v.Height()); err != nil {
			return err
		}
		if err := bw.WriteUint64(v.ChildCandidates()); err != nil {
			return err
		}
	}
	return nil
}

func readVertices(br *Reader, g *mrf.Graph) error {
	for i := 0; i < g.NumVertices(); i++ {
		v := g.Vertex(mrf.VertexID(i))

		varID, err := br.ReadUint32()
		if err != nil {
			return err
		}
		if varID != v.Variable().ID {
			return fmt.Errorf("%w: vertex %d holds variable %d, checkpoint says %d",
				ErrMismatch, i, v.Variable().ID, varID)
		}

		value, err := br.ReadUint32()
		if err != nil {
			return err
		}
		if int(value) >= v.Variable().Arity {
			return fmt.Errorf("%w: vertex %d value %d out of range", ErrMismatch, i, value)
		}
		v.SetValue(int(value))

		numFactors, err := br.ReadUint32()
		if err != nil {
			return err
		}
		factorIDs := v.FactorIDs()
		if int(numFactors) != len(factorIDs) {
			return fmt.Errorf("%w: vertex %d has %d factors, checkpoint says %d",
				ErrMismatch, i, len(factorIDs), numFactors)
		}
		for j, want := range factorIDs {
			id, err := br.ReadUint32()
			if err != nil {
				return err
			}
			if int(id) != want {
				return fmt.Errorf("%w: vertex %d factor %d is %d, checkpoint says %d",
					ErrMismatch, i, j, want, id)
			}
		}

		if err := br.ReadFloat64SliceInto(v.Belief().LogValues()); err != nil {
			return err
		}
		if err := br.ReadFloat64SliceInto(v.ScratchBelief().LogValues()); err != nil {
			return err
		}

		updates, err := br.ReadUint64()
		if err != nil {
			return err
		}
		v.SetUpdates(updates)

		parent, err := br.ReadUint32()
		if err != nil {
			return err
		}
		kind, err := br.ReadUint32()
		if err != nil {
			return err
		}
		height, err := br.ReadUint32()
		if err != nil {
			return err
		}
		st, err := mrf.StateFrom(mrf.StateKind(kind), mrf.VertexID(parent), height)
		if err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
		v.RestoreTreeState(st)

		counter, err := br.ReadUint64()
		if err != nil {
			return err
		}
		v.StoreChildCandidates(counter)
	}
	return nil
}

func writeEdges(bw *Writer, g *mrf.Graph) error {
	for i := 0; i < g.NumEdges(); i++ {
		e := g.Edge(mrf.EdgeID(i))

		if err := bw.WriteFloat64(e.Weight()); err != nil {
			return err
		}
		if err := bw.WriteFloat64Slice(e.Message().LogValues()); err != nil {
			return err
		}
		if err := bw.WriteFloat64Slice(e.EdgeFactor().LogValues()); err != nil {
			return err
		}
		if err := bw.WriteBool(e.Exploring()); err != nil {
			return err
		}
	}
	return nil
}

func readEdges(br *Reader, g *mrf.Graph) error {
	for i := 0; i < g.NumEdges(); i++ {
		e := g.Edge(mrf.EdgeID(i))

		weight, err := br.ReadFloat64()
		if err != nil {
			return err
		}
		e.SetWeight(weight)

		if err := br.ReadFloat64SliceInto(e.Message().LogValues()); err != nil {
			return err
		}
		if err := br.ReadFloat64SliceInto(e.EdgeFactor().LogValues()); err != nil {
			return err
		}

		exploring, err := br.ReadBool()
		if err != nil {
			return err
		}
		e.SetExploring(exploring)
	}
	return nil
}
