package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/soypat/saleae"
	"github.com/soypat/saleae/analyzers"

	"github.com/soypat/mmctune/pattern"
)

// Bytes of the reference pattern used to locate its start in a capture.
const syncLen = 32

func main() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "patscan - Compare Saleae binary digital captures of a tuning pattern transfer against the reference pattern.\n"+
			"The capture holds one serial data line, so mismatches are counted per bit position of each byte, not per DAT line.\n\tUsage:\n")
		flag.PrintDefaults()
	}
	data := flag.String("f-sd", "digital_1.bin", "Input filename: serial data line.")
	enable := flag.String("f-cs", "digital_0.bin", "Input filename: chip select line.")
	clk := flag.String("f-clk", "digital_2.bin", "Input filename: clock line.")
	width := flag.Int("width", 8, "Bus width of the reference pattern to compare against, 4 or 8.")
	output := flag.String("o", "", "Output filename of per-block mismatch report. Standard output if empty.")
	flag.Parse()

	start := time.Now()
	pat, err := pattern.Generate(*width)
	if err != nil {
		log.Fatal(err)
	}
	stream, err := processSpiFiles(*data, *clk, *enable)
	if err != nil {
		log.Fatal(err)
	}
	var w io.Writer = os.Stdout
	if *output != "" {
		fp, err := os.Create(*output)
		if err != nil {
			log.Fatal(err)
		}
		defer fp.Close()
		w = fp
	}
	res := compare(stream, pat)
	if err := res.write(w); err != nil {
		log.Fatal(err)
	}
	slog.Info("finished", slog.Duration("took", time.Since(start)), slog.Int("captured", len(stream)))
}

// processSpiFiles decodes the capture and concatenates the data of every transaction.
func processSpiFiles(fdata, fclk, fenable string) ([]byte, error) {
	data, err := opendigital(fdata)
	if err != nil {
		return nil, err
	}
	clk, err := opendigital(fclk)
	if err != nil {
		return nil, err
	}
	enable, err := opendigital(fenable)
	if err != nil {
		return nil, err
	}
	spi := analyzers.SPI{}
	txs, _ := spi.Scan(clk, enable, data, data)
	var stream []byte
	for _, tx := range txs {
		slog.Debug("tx", slog.Float64("start", tx.StartTime()), slog.Int("len", len(tx.SDO)))
		stream = append(stream, tx.SDO...)
	}
	return stream, nil
}

func opendigital(filename string) (*saleae.DigitalFile, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return saleae.ReadDigitalFile(fp)
}

type result struct {
	// offset of the pattern in the capture, -1 if not found.
	offset   int
	compared int
	// bitErrs counts flipped bits per bit position of the byte.
	bitErrs [8]int
	// blockErrs counts mismatched bytes per pattern block.
	blockErrs []int
}

// compare locates pat in stream and counts bit errors per bit position.
func compare(stream, pat []byte) result {
	res := result{offset: -1}
	if len(pat) == 0 {
		return res
	}
	res.offset = bytes.Index(stream, pat[:min(syncLen, len(pat))])
	if res.offset < 0 {
		return res
	}
	got := stream[res.offset:]
	res.compared = min(len(got), len(pat))
	res.blockErrs = make([]int, pattern.Blocks(pat))
	for i := 0; i < res.compared; i++ {
		diff := got[i] ^ pat[i]
		if diff == 0 {
			continue
		}
		res.blockErrs[i/pattern.BlockSize]++
		for bit := 0; bit < 8; bit++ {
			if diff&(1<<bit) != 0 {
				res.bitErrs[bit]++
			}
		}
	}
	return res
}

func (r *result) write(w io.Writer) error {
	if r.offset < 0 {
		_, err := fmt.Fprintln(w, "pattern not found in capture")
		return err
	}
	fmt.Fprintf(w, "pattern at byte %d, compared %d bytes\n", r.offset, r.compared)
	for bit := 7; bit >= 0; bit-- {
		fmt.Fprintf(w, "bit%d\terrors=%d\n", bit, r.bitErrs[bit])
	}
	for blk, n := range r.blockErrs {
		if n == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "block %2d\tmismatched=%d\n", blk, n); err != nil {
			return err
		}
	}
	return nil
}
