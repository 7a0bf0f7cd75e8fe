package mix

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"syscall"
)

// WAV output is 32-bit float stereo, extensible format.
const (
	bitsPerSample      = 32
	sampleFormat       = 3 //for float, 1 for PCM
	sampleFormatSuffix = "\x00\x00\x00\x00\x10\x00\x80\x00\x00\xAA\x00\x38\x9B\x71"
	blockAlign         = numChannels * bitsPerSample / 8

	extSize        = 2 + 4 + 16
	fmtSize        = 2 + 2 + 4 + 4 + 2 + 2 + 2 + extSize
	riffSizeOff    = 4
	riffHeaderSize = 4 + 4 + 4 + fmtSize + 4 + 4
	dataSizeOff    = riffHeaderSize + 4
)

// WAVWriter streams engine output to w as 32-bit float stereo WAV. The header
// is written before the first block with maximum sizes; if w supports
// io.WriterAt the sizes are patched after every block, so the file stays
// valid however the stream ends.
type WAVWriter struct {
	output     io.Writer
	sampleRate Tz
	numOut     Tz
}

// NewWAVWriter creates a WAVWriter for the given output and sample rate.
func NewWAVWriter(output io.Writer, sampleRate Tz) *WAVWriter {
	return &WAVWriter{output: output, sampleRate: sampleRate}
}

// Write appends one block of per-channel buffers to the stream.
func (w *WAVWriter) Write(buffer []Buffer) error {
	if w.numOut == 0 {
		if _, err := w.output.Write(w.header(-1)); err != nil {
			return err
		}
	}
	w.numOut += Tz(len(buffer[0]))
	if err := w.writeBuffer(buffer); err != nil {
		return errors.New("error while writing audio buffer: " + err.Error())
	}
	if err := w.updateHeader(); err != nil {
		return errors.New("error while updating WAV header: " + err.Error())
	}
	return nil
}

func (w *WAVWriter) sizes(numSamples Tz) (riffSize, dataSize uint32) {
	if numSamples < 0 {
		riffSize = math.MaxUint32
		dataSize = riffSize - riffHeaderSize
	} else {
		dataSize = uint32(numSamples * blockAlign)
		riffSize = dataSize + riffHeaderSize
	}
	return
}

func (w *WAVWriter) header(numSamples Tz) []byte {
	var (
		byteRate           = w.sampleRate * blockAlign
		riffSize, dataSize = w.sizes(numSamples)
	)

	//  0  4 "RIFF"
	//  4  4 riffSize = header + samples * byteRate (or just maximum possible)
	//  8  4 "WAVE"
	// 12  4 "fmt "
	// 16  4 fmtSize
	// 20  2 smplFmt
	// 22  2 numChan
	// 24  4 smpRate
	// 28  4 byteRate
	// 32  2 block
	// 34  2 bits
	// 36  2 extSize
	// 38  2 validBits
	// 40  4 channelMask
	// 44 16 format
	// 60  4 "data"
	// 64  4 dataSize = samples * byteRate
	// 68  ...

	buf := new(bytes.Buffer)
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(riffSize))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(fmtSize))
	binary.Write(buf, binary.LittleEndian, uint16(sampleFormat))
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(w.sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	binary.Write(buf, binary.LittleEndian, uint16(extSize))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint16(sampleFormat))
	buf.Write([]byte(sampleFormatSuffix))
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	return buf.Bytes()
}

func (w *WAVWriter) writeBuffer(buffer []Buffer) error {
	if len(buffer) != numChannels {
		return errors.New("only stereo buffers are supported")
	}
	length := len(buffer[0])
	if len(buffer[1]) != length {
		return errors.New("invalid buffer")
	}

	out := bufio.NewWriter(w.output)
	b := make([]byte, 8)
	for i := 0; i < length; i++ {
		l := math.Float32bits(buffer[0][i])
		r := math.Float32bits(buffer[1][i])
		binary.LittleEndian.PutUint32(b[0:4], l)
		binary.LittleEndian.PutUint32(b[4:8], r)
		out.Write(b)
	}
	return out.Flush()
}

func (w *WAVWriter) updateHeader() error {
	wa, ok := w.output.(io.WriterAt)
	if !ok {
		return nil
	}
	var (
		buf                = make([]byte, 4)
		riffSize, dataSize = w.sizes(w.numOut)
		err                error
	)
	binary.LittleEndian.PutUint32(buf, riffSize)
	_, err = wa.WriteAt(buf, riffSizeOff)
	if err != nil {
		if isPipeErr(err) {
			return nil
		}
		return err
	}
	binary.LittleEndian.PutUint32(buf, dataSize)
	_, err = wa.WriteAt(buf, dataSizeOff)
	if err != nil {
		return err
	}
	return nil
}

func isPipeErr(err error) bool {
	if perr, ok := err.(*os.PathError); ok {
		err = perr.Err
	}
	if err == syscall.ESPIPE {
		return true
	}
	return false
}
