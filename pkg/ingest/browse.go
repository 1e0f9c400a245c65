// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"context"
	"fmt"

	"github.com/gopcua/opcua/id"
	"github.com/gopcua/opcua/ua"
)

// Browse walks the address space depth-first from RootFolder looking for
// device nodes (display name contains Device1..Device102) and, within each,
// tag variables whose display name is in tags. Matched node ids have their
// 13-character serialization prefix stripped. Duplicates are not removed;
// the result order follows traversal order.
func (c *Client) Browse(ctx context.Context, tags map[string]struct{}) ([]string, error) {
	root := ua.NewNumericNodeID(0, id.RootFolder)

	var matched []string
	if err := c.browseNode(ctx, root, tags, &matched); err != nil {
		return nil, fmt.Errorf("ingest: browsing address space: %w", err)
	}
	return matched, nil
}

func (c *Client) browseNode(ctx context.Context, nodeID *ua.NodeID, tags map[string]struct{}, matched *[]string) error {
	children, err := c.browseReferences(ctx, nodeID, id.Organizes)
	if err != nil {
		return err
	}

	for _, child := range children {
		if isDeviceDisplayName(child.DisplayName) {
			if err := c.browseDevice(ctx, child.NodeID, tags, matched); err != nil {
				return err
			}
			continue
		}

		if err := c.browseNode(ctx, child.NodeID, tags, matched); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) browseDevice(ctx context.Context, deviceNode *ua.NodeID, tags map[string]struct{}, matched *[]string) error {
	children, err := c.browseReferences(ctx, deviceNode, id.HasComponent)
	if err != nil {
		return err
	}

	for _, child := range children {
		if _, ok := tags[child.DisplayName]; !ok {
			continue
		}
		*matched = append(*matched, stripSerializationPrefix(child.NodeID.String()))
	}

	return nil
}

// browseRef is a minimal view of a BrowseResult reference.
type browseRef struct {
	NodeID      *ua.NodeID
	DisplayName string
}

func (c *Client) browseReferences(ctx context.Context, nodeID *ua.NodeID, referenceType uint32) ([]browseRef, error) {
	req := &ua.BrowseRequest{
		NodesToBrowse: []*ua.BrowseDescription{
			{
				NodeID:          nodeID,
				BrowseDirection: ua.BrowseDirectionForward,
				ReferenceTypeID: ua.NewNumericNodeID(0, referenceType),
				IncludeSubtypes: true,
				NodeClassMask:   uint32(ua.NodeClassAll),
				ResultMask:      uint32(ua.BrowseResultMaskAll),
			},
		},
	}

	resp, err := c.uaClient.Browse(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	refs := make([]browseRef, 0, len(resp.Results[0].References))
	for _, ref := range resp.Results[0].References {
		refs = append(refs, browseRef{
			NodeID:      ua.NewNodeIDFromExpandedNodeID(ref.NodeID),
			DisplayName: ref.DisplayName.Text,
		})
	}

	return refs, nil
}
