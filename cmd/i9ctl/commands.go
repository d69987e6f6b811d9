package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/AshithaPGowda/code-challenge/internal/adapters/grpc/reviewrpc"
)

const defaultAddr = "localhost:50051"

type dialFunc func(addr string) (reviewrpc.ReviewServiceClient, io.Closer, error)

type rootOptions struct {
	addr     string
	timeout  time.Duration
	reviewer string
}

type callFunc func(ctx context.Context, client reviewrpc.ReviewServiceClient) (proto.Message, error)

func newRootCmd(dial dialFunc, out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "i9ctl",
		Short:         "Review I-9 forms over gRPC",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	defaultTarget := os.Getenv("I9_GRPC_ADDR")
	if defaultTarget == "" {
		defaultTarget = defaultAddr
	}
	cmd.PersistentFlags().StringVar(&opts.addr, "addr", defaultTarget, "ReviewService address (host:port)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-call timeout")
	cmd.PersistentFlags().StringVar(&opts.reviewer, "reviewer", "", "reviewer name recorded on the form")

	invoke := func(cmd *cobra.Command, call callFunc) error {
		client, closer, err := dial(opts.addr)
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
		defer cancel()

		resp, err := call(ctx, client)
		if err != nil {
			return err
		}
		return printMessage(cmd.OutOrStdout(), resp)
	}

	cmd.AddCommand(
		newGetCmd(invoke),
		newListCmd(invoke),
		newStatsCmd(invoke),
		newApproveCmd(opts, invoke),
		newResendCmd(opts, invoke),
		newRequestCorrectionsCmd(opts, invoke),
		newVerifyCmd(opts, invoke),
		newOverrideCmd(opts, invoke),
		newUpdateEmailCmd(invoke),
		newDeleteEmployeeCmd(invoke),
	)
	return cmd
}

type invoker func(cmd *cobra.Command, call callFunc) error

func newGetCmd(invoke invoker) *cobra.Command {
	return &cobra.Command{
		Use:   "get <form-id>",
		Short: "Show a single form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request(map[string]any{"id": args[0]})
			if err != nil {
				return err
			}
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.GetForm(ctx, req)
			})
		},
	}
}

func newListCmd(invoke invoker) *cobra.Command {
	var (
		status    string
		pageSize  int
		pageToken string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List forms, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := map[string]any{}
			if status != "" {
				fields["status"] = status
			}
			if pageSize > 0 {
				fields["page_size"] = pageSize
			}
			if pageToken != "" {
				fields["page_token"] = pageToken
			}
			req, err := request(fields)
			if err != nil {
				return err
			}
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.ListForms(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "maximum number of forms to return")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "token from a previous list call")
	return cmd
}

func newStatsCmd(invoke invoker) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count forms by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.GetStats(ctx, &emptypb.Empty{})
			})
		},
	}
}

func newApproveCmd(opts *rootOptions, invoke invoker) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <form-id>",
		Short: "Approve submitted data and send the document to the employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request(map[string]any{"id": args[0], "reviewer": opts.reviewer})
			if err != nil {
				return err
			}
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.ApproveData(ctx, req)
			})
		},
	}
}

func newResendCmd(opts *rootOptions, invoke invoker) *cobra.Command {
	return &cobra.Command{
		Use:   "resend <form-id>",
		Short: "Regenerate and resend the approval document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request(map[string]any{"id": args[0], "reviewer": opts.reviewer})
			if err != nil {
				return err
			}
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.ResendApproval(ctx, req)
			})
		},
	}
}

func newRequestCorrectionsCmd(opts *rootOptions, invoke invoker) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "request-corrections <form-id>",
		Short: "Send the form back to the employee with notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if notes == "" {
				return errors.New("--notes is required")
			}
			req, err := request(map[string]any{"id": args[0], "reviewer": opts.reviewer, "notes": notes})
			if err != nil {
				return err
			}
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.RequestCorrections(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "what the employee needs to fix")
	return cmd
}

func newVerifyCmd(opts *rootOptions, invoke invoker) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <form-id>",
		Short: "Mark an approved form as verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request(map[string]any{"id": args[0], "reviewer": opts.reviewer})
			if err != nil {
				return err
			}
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.VerifyFinal(ctx, req)
			})
		},
	}
}

func newOverrideCmd(opts *rootOptions, invoke invoker) *cobra.Command {
	return &cobra.Command{
		Use:   "override <form-id> <status>",
		Short: "Force a form into any status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request(map[string]any{"id": args[0], "status": args[1], "reviewer": opts.reviewer})
			if err != nil {
				return err
			}
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.OverrideStatus(ctx, req)
			})
		},
	}
}

func newUpdateEmailCmd(invoke invoker) *cobra.Command {
	var clearEmail bool
	cmd := &cobra.Command{
		Use:   "update-email <employee-id> [email]",
		Short: "Change or clear an employee's email address",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := ""
			if len(args) == 2 {
				email = args[1]
			}
			if email == "" && !clearEmail {
				return errors.New("email is required unless --clear is set")
			}
			if email != "" && clearEmail {
				return errors.New("--clear cannot be combined with an email")
			}
			req, err := request(map[string]any{"id": args[0], "email": email})
			if err != nil {
				return err
			}
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.UpdateEmployeeEmail(ctx, req)
			})
		},
	}
	cmd.Flags().BoolVar(&clearEmail, "clear", false, "remove the stored email")
	return cmd
}

func newDeleteEmployeeCmd(invoke invoker) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-employee <employee-id>",
		Short: "Delete an employee and their form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request(map[string]any{"id": args[0]})
			if err != nil {
				return err
			}
			return invoke(cmd, func(ctx context.Context, c reviewrpc.ReviewServiceClient) (proto.Message, error) {
				return c.DeleteEmployee(ctx, req)
			})
		},
	}
}

func request(fields map[string]any) (*structpb.Struct, error) {
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			delete(fields, k)
		}
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return req, nil
}

func printMessage(w io.Writer, msg proto.Message) error {
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
