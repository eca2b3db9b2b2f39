package ops

import (
	"context"
	"os"

	"github.com/studio1767/phonesync/internal/ledger"
)

// This operator generates the content hash of the local file and records
// it along with the final size and modification time. It runs after
// normalization so the hash covers the bytes that are kept.
func NewHashGenerator(ctx context.Context, in <-chan *EntryInfo) <-chan *EntryInfo {
	out := make(chan *EntryInfo, 10)
	hg := hashGenerator{
		in:  in,
		out: out,
	}
	go hg.run()

	return out
}

type hashGenerator struct {
	in  <-chan *EntryInfo
	out chan<- *EntryInfo
}

func (hg *hashGenerator) run() {
	defer close(hg.out)

	for info := range hg.in {
		hg.process(info)
	}
}

func (hg *hashGenerator) process(info *EntryInfo) {
	if info.Action == Failed || info.Local == "" || len(info.Hash) > 0 {
		hg.out <- info
		return
	}

	hash, err := ledger.HashFile(info.Local)
	if err != nil {
		info.fail(err.Error())
		hg.out <- info
		return
	}
	info.Hash = hash

	if stat, err := os.Stat(info.Local); err == nil {
		info.RawSize = stat.Size()
		info.ModTime = stat.ModTime().Unix()
	}

	hg.out <- info
}
