// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage of the built-in registries.
// It follows the flow as bellow:
//
//	           o
//	           |
//	  [ revertable state ]
//	           |
//	    [ stacked map ] -> [ journal ] -> [ batch ] -> [ kv store ]
//	           |
//	     [ lru cache ]
//	           |
//	     [ kv store ]
//
// A State is not safe for concurrent use. Callers serialize access.
package state
