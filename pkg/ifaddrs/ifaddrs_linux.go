//go:build linux

package ifaddrs

import (
	"bytes"
	"fmt"
	"net"
	"syscall"

	"github.com/vishvananda/netlink/nl"
	"golang.org/x/sys/unix"

	"github.com/jkoelker/ifwatch/pkg/sockaddr"
)

// rawTables is the Linux snapshot: the RTM_GETLINK dump parsed up front
// (address records are joined against it for names and flags) and the
// RTM_GETADDR dump kept raw, framed message by message during traversal.
type rawTables struct {
	links   []linkInfo
	byIndex map[int]int
	addrs   []byte
}

type linkInfo struct {
	index  int
	name   string
	flags  net.Flags
	lladdr []byte
	llbrd  []byte
}

func fetchTables() (rawTables, error) {
	linkDump, err := syscall.NetlinkRIB(unix.RTM_GETLINK, unix.AF_UNSPEC)
	if err != nil {
		return rawTables{}, fmt.Errorf("link table dump: %w", err)
	}

	addrDump, err := syscall.NetlinkRIB(unix.RTM_GETADDR, unix.AF_UNSPEC)
	if err != nil {
		return rawTables{}, fmt.Errorf("address table dump: %w", err)
	}

	return newRawTables(linkDump, addrDump)
}

func newRawTables(linkDump, addrDump []byte) (rawTables, error) {
	links, err := parseLinkTable(linkDump)
	if err != nil {
		return rawTables{}, fmt.Errorf("parse link table: %w", err)
	}

	byIndex := make(map[int]int, len(links))
	for pos := range links {
		byIndex[links[pos].index] = pos
	}

	return rawTables{links: links, byIndex: byIndex, addrs: addrDump}, nil
}

func parseLinkTable(dump []byte) ([]linkInfo, error) {
	msgs, err := syscall.ParseNetlinkMessage(dump)
	if err != nil {
		return nil, err
	}

	var links []linkInfo

	for pos := range msgs {
		msg := &msgs[pos]
		if msg.Header.Type != unix.RTM_NEWLINK {
			continue
		}

		if len(msg.Data) < unix.SizeofIfInfomsg {
			continue
		}

		info := nl.DeserializeIfInfomsg(msg.Data)
		link := linkInfo{
			index: int(info.Index),
			flags: linkFlags(info.Flags),
		}

		attrs, err := nl.ParseRouteAttr(msg.Data[info.Len():])
		if err != nil {
			return nil, err
		}

		for _, attr := range attrs {
			switch attr.Attr.Type {
			case unix.IFLA_IFNAME:
				link.name = nl.BytesToString(attr.Value)
			case unix.IFLA_ADDRESS:
				link.lladdr = attr.Value
			case unix.IFLA_BROADCAST:
				link.llbrd = attr.Value
			}
		}

		links = append(links, link)
	}

	return links, nil
}

// walk yields one link-level record per interface followed by one record per
// address table entry. The address dump is framed lazily so a traversal the
// consumer abandons never parses the remainder.
func (t rawTables) walk(yield func(Record) bool) {
	for pos := range t.links {
		if !yield(t.links[pos].packetRecord()) {
			return
		}
	}

	rest := t.addrs

	for {
		typ, body, next, ok := nextMessage(rest)
		if !ok || typ == unix.NLMSG_DONE {
			return
		}

		rest = next

		if typ != unix.RTM_NEWADDR {
			continue
		}

		rec, ok := t.addrRecord(body)
		if !ok {
			continue
		}

		if !yield(rec) {
			return
		}
	}
}

func (li *linkInfo) packetRecord() Record {
	rec := Record{
		Name:  li.name,
		Index: li.index,
		Flags: li.flags,
		Addr:  sockaddr.Raw{Family: unix.AF_PACKET, Data: li.lladdr},
	}

	if len(li.llbrd) > 0 {
		rec.alt = sockaddr.Raw{Family: unix.AF_PACKET, Data: li.llbrd}
	}

	return rec
}

// nextMessage frames one netlink message off buf. A truncated or corrupt
// header terminates the traversal instead of misparsing the remainder.
func nextMessage(buf []byte) (typ uint16, body, rest []byte, ok bool) {
	if len(buf) < unix.NLMSG_HDRLEN {
		return 0, nil, nil, false
	}

	endian := nl.NativeEndian()

	length := int(endian.Uint32(buf[0:4]))
	typ = endian.Uint16(buf[4:6])

	if length < unix.NLMSG_HDRLEN || length > len(buf) {
		return 0, nil, nil, false
	}

	next := (length + unix.NLMSG_ALIGNTO - 1) &^ (unix.NLMSG_ALIGNTO - 1)
	if next > len(buf) {
		next = len(buf)
	}

	return typ, buf[unix.NLMSG_HDRLEN:length], buf[next:], true
}

// addrRecord synthesizes one record from an RTM_NEWADDR message body the way
// glibc fills struct ifaddrs from the same message: IFA_LOCAL, when present,
// is the interface address and IFA_ADDRESS becomes the point-to-point
// destination; otherwise IFA_ADDRESS is the interface address and
// IFA_BROADCAST feeds the shared secondary slot.
func (t rawTables) addrRecord(body []byte) (Record, bool) {
	if len(body) < unix.SizeofIfAddrmsg {
		return Record{}, false
	}

	msg := nl.DeserializeIfAddrmsg(body)

	attrs, err := nl.ParseRouteAttr(body[msg.Len():])
	if err != nil {
		return Record{}, false
	}

	var address, local, broadcast []byte

	var label string

	for _, attr := range attrs {
		switch attr.Attr.Type {
		case unix.IFA_ADDRESS:
			address = attr.Value
		case unix.IFA_LOCAL:
			local = attr.Value
		case unix.IFA_BROADCAST:
			broadcast = attr.Value
		case unix.IFA_LABEL:
			label = nl.BytesToString(attr.Value)
		}
	}

	rec := Record{
		Index:     int(msg.Index),
		PrefixLen: int(msg.Prefixlen),
	}

	if pos, ok := t.byIndex[rec.Index]; ok {
		rec.Name = t.links[pos].name
		rec.Flags = t.links[pos].flags
	}

	if label != "" {
		rec.Name = label
	}

	primary := local
	if primary == nil {
		primary = address
	}

	if primary == nil {
		return Record{}, false
	}

	rec.Addr = sockaddr.Raw{Family: uint16(msg.Family), Data: primary}

	switch {
	case rec.Flags&net.FlagPointToPoint != 0 && local != nil && !bytes.Equal(local, address):
		rec.alt = sockaddr.Raw{Family: uint16(msg.Family), Data: address}
	case broadcast != nil:
		rec.alt = sockaddr.Raw{Family: uint16(msg.Family), Data: broadcast}
	}

	return rec, true
}
