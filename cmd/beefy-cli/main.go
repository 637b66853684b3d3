// Command beefy-cli exposes the proof utilities in pkg/clicmd (C8) as a
// command-line tool: uncompressing authority ids, generating/verifying
// Merkle proofs, and decoding MMR leaves.
//
// Grounded on original_source/beefy-cli/src/cli/mod.rs's `Command` enum
// (four top-level commands, each dispatching to a `run()`), reimplemented
// with github.com/urfave/cli/v2 instead of structopt+anyhow.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/oceanbridge/beefy-gadget/pkg/clicmd"
	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

func main() {
	app := &cli.App{
		Name:  "beefy-cli",
		Usage: "Merkle proof and MMR leaf utilities for the bridging gadget",
		Commands: []*cli.Command{
			uncompressBeefyIDCommand(),
			beefyIDMerkleTreeCommand(),
			paraHeadsMerkleTreeCommand(),
			mmrCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseAuthorityID(hexStr string) (primitives.AuthorityID, error) {
	var id primitives.AuthorityID
	raw, err := clicmd.DecodeHex(hexStr)
	if err != nil {
		return id, fmt.Errorf("decode authority id: %w", err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("authority id must be %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func uncompressBeefyIDCommand() *cli.Command {
	return &cli.Command{
		Name:  "uncompress-beefy-id",
		Usage: "Decode and uncompress one or more BEEFY authority ids (compressed public keys)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "authority", Usage: "a single hex-encoded compressed authority id"},
			&cli.StringFlag{Name: "authorities", Usage: "comma-separated hex-encoded compressed authority ids"},
		},
		Action: func(c *cli.Context) error {
			var ids []primitives.AuthorityID

			if a := c.String("authority"); a != "" {
				id, err := parseAuthorityID(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			if a := c.String("authorities"); a != "" {
				for _, part := range strings.Split(a, ",") {
					id, err := parseAuthorityID(strings.TrimSpace(part))
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("neither --authority nor --authorities given")
			}

			out, err := clicmd.UncompressAuthorityIDs(ids)
			if err != nil {
				return err
			}
			for _, o := range out {
				fmt.Printf("[%s] Uncompressed:\n\t0x%x\n", o.ID, o.Uncompressed)
			}
			return nil
		},
	}
}

func beefyIDMerkleTreeCommand() *cli.Command {
	return &cli.Command{
		Name:  "beefy-id-merkle-tree",
		Usage: "Construct or verify a merkle proof from BEEFY authorities",
		Subcommands: []*cli.Command{
			generateProofSubcommand(authorityLeavesFromArgs),
			verifyProofSubcommand(),
		},
	}
}

func paraHeadsMerkleTreeCommand() *cli.Command {
	return &cli.Command{
		Name:  "para-heads-merkle-tree",
		Usage: "Construct or verify a merkle proof from parachain heads",
		Subcommands: []*cli.Command{
			generateProofSubcommand(paraHeadLeavesFromArgs),
			verifyProofSubcommand(),
		},
	}
}

// authorityLeavesFromArgs parses a comma-separated list of hex-encoded
// compressed authority ids into their Ethereum-address Merkle leaves.
func authorityLeavesFromArgs(raw string) ([][]byte, error) {
	var ids []primitives.AuthorityID
	for _, part := range strings.Split(raw, ",") {
		id, err := parseAuthorityID(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return clicmd.AuthorityAddressLeaves(ids)
}

// paraHeadLeavesFromArgs parses a comma-separated list of para_id:hex-head
// pairs into Merkle leaves.
func paraHeadLeavesFromArgs(raw string) ([][]byte, error) {
	var leaves [][]byte
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("expected para_id:hex_head, got %q", part)
		}
		paraID, err := strconv.ParseUint(kv[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse para id: %w", err)
		}
		head, err := clicmd.DecodeHex(kv[1])
		if err != nil {
			return nil, fmt.Errorf("decode head: %w", err)
		}
		packed := make([]byte, 4+len(head))
		packed[0] = byte(paraID >> 24)
		packed[1] = byte(paraID >> 16)
		packed[2] = byte(paraID >> 8)
		packed[3] = byte(paraID)
		copy(packed[4:], head)
		leaves = append(leaves, packed)
	}
	return leaves, nil
}

func generateProofSubcommand(parseLeaves func(string) ([][]byte, error)) *cli.Command {
	return &cli.Command{
		Name:  "generate-proof",
		Usage: "Construct a merkle tree and generate a proof for one leaf",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "items", Required: true, Usage: "comma-separated leaf inputs"},
			&cli.IntFlag{Name: "leaf-index", Required: true},
		},
		Action: func(c *cli.Context) error {
			leaves, err := parseLeaves(c.String("items"))
			if err != nil {
				return err
			}
			proof, err := clicmd.GenerateProof(leaves, c.Int("leaf-index"))
			if err != nil {
				return err
			}
			fmt.Printf("Root: 0x%x\n", proof.Root)
			fmt.Printf("NumberOfLeaves: %d\n", proof.NumberOfLeaves)
			fmt.Printf("LeafIndex: %d\n", proof.LeafIndex)
			for i, p := range proof.Proof {
				fmt.Printf("Proof[%d]: 0x%x\n", i, p)
			}
			return nil
		},
	}
}

func verifyProofSubcommand() *cli.Command {
	return &cli.Command{
		Name:  "verify-proof",
		Usage: "Verify a merkle proof given root hash and proof content",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Required: true},
			&cli.StringFlag{Name: "proof", Required: true, Usage: "comma-separated hex-encoded proof elements"},
			&cli.IntFlag{Name: "number-of-leaves", Required: true},
			&cli.IntFlag{Name: "leaf-index", Required: true},
			&cli.StringFlag{Name: "leaf", Required: true, Usage: "hex-encoded leaf content"},
		},
		Action: func(c *cli.Context) error {
			leaf, err := clicmd.DecodeHex(c.String("leaf"))
			if err != nil {
				return fmt.Errorf("decode leaf: %w", err)
			}

			var proofHex []string
			if p := c.String("proof"); p != "" {
				proofHex = strings.Split(p, ",")
			}

			ok, err := clicmd.VerifyProof(c.String("root"), proofHex, c.Int("number-of-leaves"), c.Int("leaf-index"), leaf)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("proof does not verify")
			}
			fmt.Println("OK")
			return nil
		},
	}
}

func mmrCommand() *cli.Command {
	return &cli.Command{
		Name:  "mmr",
		Usage: "Merkle Mountain Range related commands",
		Subcommands: []*cli.Command{
			{
				Name:  "decode-leaf",
				Usage: "Decode a double-wrapped BEEFY MMR leaf",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "leaf", Required: true, Usage: "hex-encoded double-wrapped leaf bytes"},
				},
				Action: func(c *cli.Context) error {
					raw, err := clicmd.DecodeHex(c.String("leaf"))
					if err != nil {
						return fmt.Errorf("decode leaf bytes: %w", err)
					}
					leaf, err := clicmd.DecodeMMRLeaf(raw)
					if err != nil {
						return err
					}
					fmt.Printf("%+v\n", leaf)
					return nil
				},
			},
			{
				Name:  "storage-key",
				Usage: "Construct the MMR offchain storage key",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Required: true},
					&cli.StringFlag{Name: "pos", Required: true},
				},
				Action: func(c *cli.Context) error {
					pos, err := clicmd.ParseUint64(c.String("pos"))
					if err != nil {
						return err
					}
					key := clicmd.MMRStorageKey(c.String("prefix"), pos)
					fmt.Printf("0x%x\n", key)
					return nil
				},
			},
		},
	}
}
