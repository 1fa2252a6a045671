// Package uaspace implements AddressSpaceOps: Browse/BrowseNext,
// Read/Write, Call, TranslateBrowsePathsToNodeIds, RegisterNodes /
// UnregisterNodes, and HistoryRead, layered as a thin set of functions
// over pkg/uaservices.Dispatcher + pkg/uasession.Session — the same
// layering backkem/matter uses for pkg/im's Read/Write/Invoke
// convenience wrappers over pkg/exchange (spec §4.8).
//
// Per-item StatusCodes returned inside a response array are never
// raised as errors; only the envelope-level ServiceResult does (spec
// §4.8 "Failure semantics", §7 propagation policy).
package uaspace

import (
	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uaerr"
	"github.com/foundry-iiot/opcua/pkg/uasession"
	"github.com/foundry-iiot/opcua/pkg/uaservices"
)

// MaxBrowseIterations caps ManagedBrowse's continuation-point walk, so
// a misbehaving server handing out an unbounded chain of continuation
// points cannot hang the caller forever (spec §4.8, open question
// resolved in DESIGN.md: raises a distinct uaerr.Service error rather
// than silently truncating results).
const MaxBrowseIterations = 1000

// Space binds AddressSpaceOps to one session.
type Space struct {
	sess *uasession.Session
}

// New binds a Space to sess.
func New(sess *uasession.Session) *Space {
	return &Space{sess: sess}
}

// Browse issues one Browse request over nodesToBrowse.
func (s *Space) Browse(view uaservices.ViewDescription, maxReferencesPerNode uint32, nodesToBrowse []uaservices.BrowseDescription) ([]uaservices.BrowseResult, error) {
	req := uaservices.BrowseRequest{
		Header:                        s.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		View:                          view,
		RequestedMaxReferencesPerNode: maxReferencesPerNode,
		NodesToBrowse:                 nodesToBrowse,
	}
	resp, err := uaservices.Call[uaservices.BrowseResponse](s.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// BrowseNext continues past continuationPoints, or releases them when
// release is true.
func (s *Space) BrowseNext(release bool, continuationPoints [][]byte) ([]uaservices.BrowseResult, error) {
	req := uaservices.BrowseNextRequest{
		Header:                    s.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		ReleaseContinuationPoints: release,
		ContinuationPoints:        continuationPoints,
	}
	resp, err := uaservices.Call[uaservices.BrowseNextResponse](s.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ManagedBrowse runs Browse then repeatedly BrowseNext until every
// result has no continuation point left, merging references across
// calls. It gives up after MaxBrowseIterations rounds rather than
// trusting a server's continuation-point chain indefinitely.
func (s *Space) ManagedBrowse(view uaservices.ViewDescription, maxReferencesPerNode uint32, nodesToBrowse []uaservices.BrowseDescription) ([][]uaservices.ReferenceDescription, error) {
	results, err := s.Browse(view, maxReferencesPerNode, nodesToBrowse)
	if err != nil {
		return nil, err
	}

	merged := make([][]uaservices.ReferenceDescription, len(results))
	pending := make(map[int][]byte)
	for i, r := range results {
		merged[i] = append(merged[i], r.References...)
		if len(r.ContinuationPoint) > 0 {
			pending[i] = r.ContinuationPoint
		}
	}

	for iter := 0; len(pending) > 0; iter++ {
		if iter >= MaxBrowseIterations {
			return nil, uaerr.New(uaerr.Service, "managed browse exceeded %d continuation-point iterations", MaxBrowseIterations)
		}

		indices := make([]int, 0, len(pending))
		cps := make([][]byte, 0, len(pending))
		for i, cp := range pending {
			indices = append(indices, i)
			cps = append(cps, cp)
		}

		nextResults, err := s.BrowseNext(false, cps)
		if err != nil {
			return nil, err
		}

		pending = make(map[int][]byte)
		for j, r := range nextResults {
			i := indices[j]
			merged[i] = append(merged[i], r.References...)
			if len(r.ContinuationPoint) > 0 {
				pending[i] = r.ContinuationPoint
			}
		}
	}

	return merged, nil
}

// TranslateBrowsePathsToNodeIds resolves browsePaths against the
// address space.
func (s *Space) TranslateBrowsePathsToNodeIds(browsePaths []uaservices.BrowsePath) ([]uaservices.BrowsePathResult, error) {
	req := uaservices.TranslateBrowsePathsToNodeIdsRequest{
		Header:      s.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		BrowsePaths: browsePaths,
	}
	resp, err := uaservices.Call[uaservices.TranslateBrowsePathsToNodeIdsResponse](s.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// RegisterNodes asks the server for cheaper aliases of hot nodes.
func (s *Space) RegisterNodes(nodesToRegister []ua.NodeId) ([]ua.NodeId, error) {
	req := uaservices.RegisterNodesRequest{
		Header:          s.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		NodesToRegister: nodesToRegister,
	}
	resp, err := uaservices.Call[uaservices.RegisterNodesResponse](s.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}
	return resp.RegisteredNodeIds, nil
}

// UnregisterNodes releases aliases acquired via RegisterNodes.
func (s *Space) UnregisterNodes(nodesToUnregister []ua.NodeId) error {
	req := uaservices.UnregisterNodesRequest{
		Header:            s.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		NodesToUnregister: nodesToUnregister,
	}
	_, err := uaservices.Call[uaservices.UnregisterNodesResponse](s.sess.Dispatcher(), req, 0)
	return err
}

// Read reads one or more attributes in a single round trip.
func (s *Space) Read(maxAge float64, ttr uaservices.TimestampsToReturn, nodesToRead []uaservices.ReadValueId) ([]ua.DataValue, error) {
	req := uaservices.ReadRequest{
		Header:             s.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		MaxAge:             maxAge,
		TimestampsToReturn: ttr,
		NodesToRead:        nodesToRead,
	}
	resp, err := uaservices.Call[uaservices.ReadResponse](s.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Write writes one or more attributes in a single round trip.
func (s *Space) Write(nodesToWrite []uaservices.WriteValue) ([]ua.StatusCode, error) {
	req := uaservices.WriteRequest{
		Header:       s.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		NodesToWrite: nodesToWrite,
	}
	resp, err := uaservices.Call[uaservices.WriteResponse](s.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Call invokes one or more methods.
func (s *Space) Call(methodsToCall []uaservices.CallMethodRequest) ([]uaservices.CallMethodResult, error) {
	req := uaservices.CallRequest{
		Header:        s.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		MethodsToCall: methodsToCall,
	}
	resp, err := uaservices.Call[uaservices.CallResponse](s.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// HistoryRead reads raw or processed history, walking continuation
// points with the same iteration cap ManagedBrowse uses.
func (s *Space) HistoryRead(details ua.ExtensionObject, ttr uaservices.TimestampsToReturn, nodesToRead []uaservices.HistoryReadValueId) ([]uaservices.HistoryReadResult, error) {
	results := make([]uaservices.HistoryReadResult, len(nodesToRead))
	pending := make(map[int]uaservices.HistoryReadValueId, len(nodesToRead))
	for i, v := range nodesToRead {
		pending[i] = v
	}

	for iter := 0; len(pending) > 0; iter++ {
		if iter >= MaxBrowseIterations {
			return nil, uaerr.New(uaerr.Service, "history read exceeded %d continuation-point iterations", MaxBrowseIterations)
		}

		indices := make([]int, 0, len(pending))
		items := make([]uaservices.HistoryReadValueId, 0, len(pending))
		for i, v := range pending {
			indices = append(indices, i)
			items = append(items, v)
		}

		req := uaservices.HistoryReadRequest{
			Header:             s.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
			HistoryReadDetails: details,
			TimestampsToReturn: ttr,
			NodesToRead:        items,
		}
		resp, err := uaservices.Call[uaservices.HistoryReadResponse](s.sess.Dispatcher(), req, 0)
		if err != nil {
			return nil, err
		}

		pending = make(map[int]uaservices.HistoryReadValueId)
		for j, r := range resp.Results {
			i := indices[j]
			results[i] = r
			if len(r.ContinuationPoint) > 0 {
				next := items[j]
				next.ContinuationPoint = r.ContinuationPoint
				pending[i] = next
			}
		}
	}

	return results, nil
}
