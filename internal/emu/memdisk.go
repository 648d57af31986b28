package emu

import "errors"

// MemDisk is a sparse in-memory Disk. Unwritten blocks read as zeros.
type MemDisk struct {
	blocks map[int64]*[blockSize]byte
}

func NewMemDisk() *MemDisk {
	return &MemDisk{blocks: make(map[int64]*[blockSize]byte)}
}

func (m *MemDisk) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, errors.New("emu: negative offset")
	}
	for n < len(p) {
		blk, boff := (off+int64(n))/blockSize, (off+int64(n))%blockSize
		chunk := p[n:min(len(p), n+blockSize-int(boff))]
		if b, ok := m.blocks[blk]; ok {
			copy(chunk, b[boff:])
		} else {
			clear(chunk)
		}
		n += len(chunk)
	}
	return n, nil
}

func (m *MemDisk) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, errors.New("emu: negative offset")
	}
	for n < len(p) {
		blk, boff := (off+int64(n))/blockSize, (off+int64(n))%blockSize
		b, ok := m.blocks[blk]
		if !ok {
			b = new([blockSize]byte)
			m.blocks[blk] = b
		}
		n += copy(b[boff:], p[n:])
	}
	return n, nil
}
